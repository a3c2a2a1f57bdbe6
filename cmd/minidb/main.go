// Command minidb is MiniDB's interactive REPL: a line-oriented loop that
// calls Session.Execute per statement, formatting results the way
// spec.md §6/§7 specify (tab-separated rows, NULL for nulls, a row-count
// footer for selects, and "Parse error: "/"Error: " prefixes for
// failures), grounded on the teacher's cmd/repl/main.go loop shape but
// restructured around peterh/liner for line-editing the way
// calvinalkan-agent-task/cmd/sloty/main.go wires liner into its REPL.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"minidb/internal/catalog"
	"minidb/internal/dbconfig"
	"minidb/internal/manifest"
	"minidb/internal/monitor"
	"minidb/internal/opslog"
	"minidb/internal/session"
	"minidb/internal/tuple"
	"minidb/internal/txn"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flagSet := flag.NewFlagSet("minidb", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	dataDir := flagSet.String("data-dir", ".", "directory holding table files and the config")
	pageSize := flagSet.Int("page-size", 4096, "page size in bytes (must be 4096)")
	poolSize := flagSet.Int("pool-size", 16, "buffer pool frames per table")
	monitorSpec := flagSet.String("monitor-cron", "", "cron spec for periodic stats logging (empty disables it)")
	if err := flagSet.Parse(args); err != nil {
		return 1
	}

	cfgPath := filepath.Join(*dataDir, dbconfig.FileName)
	cfg, err := dbconfig.Load(cfgPath)
	if err != nil {
		cfg = dbconfig.Config{PageSize: *pageSize, PoolSize: *poolSize, DataDir: *dataDir}
		if saveErr := dbconfig.Save(cfgPath, cfg); saveErr != nil {
			fmt.Fprintln(stderr, "Error:", saveErr)
			return 1
		}
	}

	lockMgr := txn.NewLockManager()
	cat := catalog.New(cfg.DataDir, cfg.PoolSize, lockMgr)
	defer cat.Close()

	existing, err := manifest.ListTables(cfg.DataDir)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	for _, name := range existing {
		if _, err := cat.OpenTable(name); err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return 1
		}
	}

	sess := session.New(cat, txn.NewManager(), lockMgr, txn.NewWAL())

	logger := opslog.Default(sess.ID())
	mon := monitor.New(logger, lockMgr)
	for _, name := range existing {
		if table, ok := cat.Table(name); ok {
			mon.AddPool(name, table)
		}
	}
	if *monitorSpec != "" {
		if err := mon.Start(*monitorSpec); err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return 1
		}
		defer mon.Stop()
	}

	return runREPL(sess, mon, stdin, stdout, stderr)
}

func runREPL(sess *session.Session, mon *monitor.Monitor, stdin io.Reader, stdout, stderr io.Writer) int {
	interactive := stdin == io.Reader(os.Stdin) && isTerminal(os.Stdin)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := historyFilePath()
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	if interactive {
		fmt.Fprintln(stdout, "minidb REPL. Statements are not terminated with ';'. Ctrl-D to quit.")
	}

	for {
		text, err := line.Prompt("minidb> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				break
			}
			fmt.Fprintln(stderr, "Error:", err)
			break
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		line.AppendHistory(text)

		if strings.HasPrefix(strings.ToUpper(text), "DESCRIBE ") {
			handleDescribe(sess, text, stdout)
			continue
		}

		res, err := sess.Execute(text)
		if err != nil {
			printError(err, stdout)
			continue
		}
		if res.Kind == session.TableCreated {
			if table, ok := sess.Catalog().Table(res.TableName); ok {
				mon.AddPool(res.TableName, table)
			}
		}
		printResult(res, stdout)
	}

	if f, err := os.Create(historyPath); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
	return 0
}

func printError(err error, out io.Writer) {
	if sessErr, ok := err.(*session.Error); ok && sessErr.Origin == session.ParseOrigin {
		fmt.Fprintln(out, "Parse error:", sessErr.Unwrap())
		return
	}
	fmt.Fprintln(out, "Error:", err)
}

func printResult(res session.Result, out io.Writer) {
	switch res.Kind {
	case session.TableCreated:
		fmt.Fprintf(out, "Table %s created\n", res.TableName)
	case session.IndexCreated:
		fmt.Fprintf(out, "Index created on %s\n", res.TableName)
	case session.RowInserted:
		fmt.Fprintf(out, "Row inserted into %s\n", res.TableName)
	case session.TransactionStarted:
		fmt.Fprintf(out, "Transaction %d started\n", res.TxnID)
	case session.TransactionCommitted:
		fmt.Fprintf(out, "Transaction %d committed\n", res.TxnID)
	case session.TransactionAborted:
		fmt.Fprintf(out, "Transaction %d aborted\n", res.TxnID)
	case session.Selected:
		printRows(res, out)
	}
}

func printRows(res session.Result, out io.Writer) {
	for _, row := range res.Rows {
		fields := make([]string, len(row.Values))
		for i, v := range row.Values {
			fields[i] = formatValue(v)
		}
		fmt.Fprintln(out, strings.Join(fields, "\t"))
	}
	fmt.Fprintf(out, "%d rows\n", len(res.Rows))
}

func formatValue(v tuple.Value) string {
	if v.IsNull() {
		return "NULL"
	}
	switch v.Kind {
	case tuple.KindInteger:
		return fmt.Sprintf("%d", v.Int)
	case tuple.KindText:
		return string(v.Text)
	case tuple.KindBoolean:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return ""
	}
}

func handleDescribe(sess *session.Session, text string, out io.Writer) {
	name := strings.TrimSpace(text[len("DESCRIBE "):])
	table, ok := sess.Catalog().Table(name)
	if !ok {
		fmt.Fprintf(out, "Error: table %q not found\n", name)
		return
	}
	fmt.Fprint(out, manifest.Describe(name, table.Schema()))
}

func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".minidb_history"
	}
	return filepath.Join(home, ".minidb_history")
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
