// Package cli implements the apiclient command line tool.
package cli
