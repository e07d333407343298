package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
)

// CLI is the program's full command-line surface (spec.md §6.2): a
// database path, then either a dot-command or a full SQL statement.
// Kong collects the trailing words into Command, and main joins them
// with spaces so an unquoted SQL string still reaches the executor as a
// single command.
var CLI struct {
	Verbose  bool     `short:"v" help:"Enable verbose diagnostic logging."`
	Database string   `arg:"" type:"existingfile" help:"Path to the SQLite database file."`
	Command  []string `arg:"" help:"Dot-command (.dbinfo, .tables, .tableslong, .indexes, .scancheck <table>) or a SQL statement." passthrough:""`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("sqlite-go"),
		kong.Description("Read-only query engine for a single SQLite database file."),
	)
	if len(CLI.Command) == 0 {
		kctx.FatalIfErrorf(newErr(KindInvalidArguments, "main", "missing command", nil))
	}

	command := strings.Join(CLI.Command, " ")
	if err := run(CLI.Database, command, CLI.Verbose); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(dbPath, command string, verbose bool) error {
	engine, rm, err := Open(dbPath, WithVerbose(verbose))
	if err != nil {
		return err
	}
	defer rm.Close()

	f := NewFormatter(os.Stdout)

	if strings.HasPrefix(command, ".scancheck") {
		table := strings.TrimSpace(strings.TrimPrefix(command, ".scancheck"))
		if table == "" {
			return newErr(KindInvalidArguments, "run", "scancheck requires a table name", nil)
		}
		rowCount, issues, err := engine.ScanCheck(table)
		if err != nil {
			return err
		}
		return f.WriteScanCheck(rowCount, issues)
	}

	switch command {
	case ".dbinfo":
		pageSize, tableCount, err := engine.DBInfo()
		if err != nil {
			return err
		}
		return f.WriteDBInfo(pageSize, tableCount)
	case ".tables":
		return f.WriteTableNames(engine.TableNames())
	case ".tableslong":
		return f.WriteTablesLong(engine.Tables())
	case ".indexes":
		return f.WriteIndexes(engine.Indexes())
	default:
		return engine.Execute(command, f)
	}
}
