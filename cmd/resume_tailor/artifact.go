package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/state"
)

var artifactCommand = &cobra.Command{
	Use:   "artifact",
	Short: "Print one stage output of a run from the database mirror",
	RunE:  runArtifactCmd,
}

var (
	artifactRunID string
	artifactStage string
)

func init() {
	artifactCommand.Flags().StringVar(&artifactRunID, "run-id", "", "Run ID")
	artifactCommand.Flags().StringVar(&artifactStage, "stage", "", "Stage name, e.g. job_analysis or qa_report")
	_ = artifactCommand.MarkFlagRequired("run-id")
	_ = artifactCommand.MarkFlagRequired("stage")

	rootCmd.AddCommand(artifactCommand)
}

func runArtifactCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	stage, err := parseStage(artifactStage)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	conn, err := a.database(ctx)
	if err != nil {
		return err
	}
	if conn == nil {
		return errors.New("a database URL is required (--db-url or DATABASE_URL)")
	}

	content, err := db.NewStore(conn).GetArtifact(ctx, artifactRunID, stage)
	if err != nil {
		return errors.Wrap(err, "failed to load artifact")
	}
	if content == nil {
		return errors.Errorf("run %s has no %s output", artifactRunID, stage)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, content, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(content)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
	return nil
}

func parseStage(name string) (state.Stage, error) {
	for _, s := range state.Stages() {
		if string(s) == name {
			return s, nil
		}
	}
	return "", errors.Errorf("unknown stage %q", name)
}
