package cmd

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/agentic-research/familiar-registry/internal/artifacts"
	"github.com/spf13/cobra"
)

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "Inspect the artifact index built from --manifest-root",
}

var artifactsCoverageCmd = &cobra.Command{
	Use:   "coverage <bundle-dir>",
	Short: "Print per-language artifact coverage (requires --manifest-root)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(args[0])
		if err != nil {
			return err
		}
		coverage := engine.Artifacts.ArtifactCoverage()
		langs := make([]string, 0, len(coverage))
		for lang := range coverage {
			langs = append(langs, lang)
		}
		sort.Strings(langs)
		for _, lang := range langs {
			stat := coverage[lang]
			fmt.Fprintf(cmdOut, "%s: %d/%d\n", lang, stat.Present, stat.Total)
		}
		return nil
	},
}

var artifactsVerifyCmd = &cobra.Command{
	Use:   "verify <bundle-dir>",
	Short: "Check every indexed artifact still declares its type in its source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(args[0])
		if err != nil {
			return err
		}
		diags := engine.Artifacts.VerifyAll(engine.FS())
		for _, d := range diags {
			fmt.Fprintln(cmdOut, d.String())
		}
		if len(diags) == 0 {
			fmt.Fprintln(cmdOut, "all artifacts verified")
		}
		return nil
	},
}

var artifactsSQLCmd = &cobra.Command{
	Use:   "sql <bundle-dir> <cache-path> <query>",
	Short: "Export the artifact index to a SQLite cache and run a query against it through the artifact_refs virtual table",
	Long: `sql exports the built artifact index to cache-path (via ExportSQLite),
registers that file under the artifact_refs virtual table, and runs query
against a schema_id/artifact_id table backed by the index's bitmaps —
e.g. "SELECT artifact_id FROM artifact_refs WHERE schema_id = 'order.json'".`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		bundleDir, cachePath, query := args[0], args[1], args[2]

		engine, err := buildEngine(bundleDir)
		if err != nil {
			return err
		}
		if err := engine.Artifacts.ExportSQLite(cachePath); err != nil {
			return fmt.Errorf("export artifact cache: %w", err)
		}

		module, err := artifacts.RegisterArtifactRefsModule()
		if err != nil {
			return err
		}

		db, err := sql.Open("sqlite", cachePath)
		if err != nil {
			return fmt.Errorf("open artifact cache %s: %w", cachePath, err)
		}
		defer db.Close()

		const dbID = "main"
		module.RegisterDB(dbID, db)
		defer module.UnregisterDB(dbID)

		if _, err := db.Exec(fmt.Sprintf("CREATE VIRTUAL TABLE IF NOT EXISTS artifact_refs USING artifact_refs(%s)", dbID)); err != nil {
			return fmt.Errorf("create artifact_refs virtual table: %w", err)
		}

		return runArtifactSQLQuery(db, query)
	},
}

func runArtifactSQLQuery(db *sql.DB, query string) error {
	rows, err := db.Query(query)
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("read columns: %w", err)
	}
	fmt.Fprintln(cmdOut, strings.Join(cols, "\t"))

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		cells := make([]string, len(vals))
		for i, v := range vals {
			cells[i] = fmt.Sprintf("%v", v)
		}
		fmt.Fprintln(cmdOut, strings.Join(cells, "\t"))
	}
	return rows.Err()
}

func init() {
	artifactsCmd.AddCommand(artifactsCoverageCmd, artifactsVerifyCmd, artifactsSQLCmd)
	rootCmd.AddCommand(artifactsCmd)
}
