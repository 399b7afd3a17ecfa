package dbtest

import (
	"fmt"
	"testing"
)

// Exec runs a statement and fails the test on error.
func (c *Component) Exec(t testing.TB, stmt string, args ...any) {
	t.Helper()
	if err := c.DB().Exec(stmt, args...).Error; err != nil {
		t.Fatalf("exec %q failed: %v", stmt, err)
	}
}

// CountRows returns the number of rows in a table.
func (c *Component) CountRows(table string) (int64, error) {
	var count int64
	err := c.DB().Table(table).Count(&count).Error
	return count, err
}

// RowExists reports whether a row with the given primary key is present.
func (c *Component) RowExists(table, pkColumn string, pk any) (bool, error) {
	var count int64
	err := c.DB().Table(table).Where(fmt.Sprintf("%s = ?", pkColumn), pk).Count(&count).Error
	return count > 0, err
}

// Column returns one column of the row with the given primary key.
func (c *Component) Column(table, pkColumn string, pk any, column string) (any, error) {
	var row map[string]any
	err := c.DB().Table(table).Select(column).Where(fmt.Sprintf("%s = ?", pkColumn), pk).Take(&row).Error
	if err != nil {
		return nil, err
	}
	if b, ok := row[column].([]byte); ok {
		return string(b), nil
	}
	return row[column], nil
}

// TableNames returns every user table.
func (c *Component) TableNames() ([]string, error) {
	var tables []string
	err := c.DB().Raw("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name").
		Scan(&tables).Error
	return tables, err
}

// AssertRowExists fails the test if the row is missing.
func (c *Component) AssertRowExists(t testing.TB, table, pkColumn string, pk any) {
	t.Helper()
	ok, err := c.RowExists(table, pkColumn, pk)
	if err != nil {
		t.Fatalf("failed to look up %s.%s=%v: %v", table, pkColumn, pk, err)
	}
	if !ok {
		t.Errorf("expected row %s.%s=%v to exist", table, pkColumn, pk)
	}
}

// AssertRowAbsent fails the test if the row is present.
func (c *Component) AssertRowAbsent(t testing.TB, table, pkColumn string, pk any) {
	t.Helper()
	ok, err := c.RowExists(table, pkColumn, pk)
	if err != nil {
		t.Fatalf("failed to look up %s.%s=%v: %v", table, pkColumn, pk, err)
	}
	if ok {
		t.Errorf("expected row %s.%s=%v to be gone", table, pkColumn, pk)
	}
}

// AssertRowCount fails the test if the table doesn't have the expected row count.
func (c *Component) AssertRowCount(t testing.TB, table string, expected int64) {
	t.Helper()
	count, err := c.CountRows(table)
	if err != nil {
		t.Fatalf("failed to count rows in %s: %v", table, err)
	}
	if count != expected {
		t.Errorf("table %s row count = %d, want %d", table, count, expected)
	}
}

// AssertTableEmpty fails the test if the table is not empty.
func (c *Component) AssertTableEmpty(t testing.TB, table string) {
	t.Helper()
	c.AssertRowCount(t, table, 0)
}
