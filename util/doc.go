// Package util provides small generic helpers shared by dbprime packages.
package util
