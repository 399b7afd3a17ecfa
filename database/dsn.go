package database

import (
	"net"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/kbukum/dbprime/errors"
	"github.com/kbukum/dbprime/util"
)

var knownArgs = map[string]bool{
	ArgHost: true, ArgPort: true, ArgUser: true, ArgPassword: true,
	ArgDatabase: true, ArgSSLMode: true, ArgDSN: true,
}

// extraArgs returns the keys of args that are not well-known, sorted.
func extraArgs(args Args) []string {
	var keys []string
	for _, k := range util.SortedKeys(args) {
		if !knownArgs[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// PostgresDSN builds a keyword/value connection string. A dsn argument is
// used verbatim. The result is checked with pgconn.ParseConfig so malformed
// input fails before any dial.
func PostgresDSN(args Args) (string, error) {
	dsn, ok := args[ArgDSN]
	if !ok {
		var parts []string
		add := func(key, value string) {
			if value != "" {
				parts = append(parts, key+"="+quotePostgres(value))
			}
		}
		add("host", args[ArgHost])
		add("port", args[ArgPort])
		add("user", args[ArgUser])
		add("password", args[ArgPassword])
		add("dbname", args[ArgDatabase])
		add("sslmode", args[ArgSSLMode])
		for _, k := range extraArgs(args) {
			add(k, args[k])
		}
		dsn = strings.Join(parts, " ")
	}

	if _, err := pgconn.ParseConfig(dsn); err != nil {
		return "", apperrors.InvalidInput(ArgDSN, "malformed postgres connection arguments").WithCause(err)
	}
	return dsn, nil
}

// quotePostgres quotes a keyword/value value when it is empty or contains
// spaces, quotes or backslashes.
func quotePostgres(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// MySQLDSN builds a go-sql-driver/mysql DSN. Host defaults to 127.0.0.1 and
// port to 3306; unknown arguments become DSN parameters.
func MySQLDSN(args Args) (string, error) {
	if dsn, ok := args[ArgDSN]; ok {
		if _, err := mysql.ParseDSN(dsn); err != nil {
			return "", apperrors.InvalidInput(ArgDSN, "malformed mysql dsn").WithCause(err)
		}
		return dsn, nil
	}

	host := args[ArgHost]
	if host == "" {
		host = "127.0.0.1"
	}
	port := args[ArgPort]
	if port == "" {
		port = "3306"
	}

	cfg := mysql.NewConfig()
	cfg.User = args[ArgUser]
	cfg.Passwd = args[ArgPassword]
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, port)
	cfg.DBName = args[ArgDatabase]
	if mode := args[ArgSSLMode]; mode != "" {
		cfg.TLSConfig = mysqlTLS(mode)
	}
	if extras := extraArgs(args); len(extras) > 0 {
		cfg.Params = make(map[string]string, len(extras))
		for _, k := range extras {
			cfg.Params[k] = args[k]
		}
	}
	return cfg.FormatDSN(), nil
}

// mysqlTLS maps libpq sslmode names onto go-sql-driver tls values. Other
// values name a registered TLS config and pass through.
func mysqlTLS(sslmode string) string {
	switch sslmode {
	case "disable":
		return "false"
	case "allow", "prefer":
		return "preferred"
	case "require":
		return "skip-verify"
	case "verify-ca", "verify-full":
		return "true"
	default:
		return sslmode
	}
}

// SQLiteDSN builds a mattn/go-sqlite3 DSN from the database path, which
// defaults to an in-memory database. Unknown arguments become query
// parameters such as _busy_timeout or _foreign_keys.
func SQLiteDSN(args Args) (string, error) {
	if dsn, ok := args[ArgDSN]; ok {
		return dsn, nil
	}

	path := args[ArgDatabase]
	if path == "" {
		path = ":memory:"
	}

	extras := extraArgs(args)
	if len(extras) == 0 {
		return path, nil
	}
	params := url.Values{}
	for _, k := range extras {
		params.Set(k, args[k])
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + params.Encode(), nil
}
