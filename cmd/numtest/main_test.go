package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/tcm/plasmon/numtest"
)

// skippedPlan only holds FFTs of a real kind, which never reach a native kernel.
func skippedPlan(dir string) []string {
	return []string{"--bin-dir", dir, "--op", "fft,fft2d", "--kind", "float", "--passes", "1"}
}

func TestRerun(t *testing.T) {
	t.Parallel()
	dir, err := os.MkdirTemp("", "")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer os.RemoveAll(dir)
	dbPath := filepath.Join(dir, "ledger.db")

	cmd := newCommand()
	cmd.SetArgs(append(skippedPlan(dir), "--ledger", dbPath, "--seed", "20241017"))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%+v", err)
	}
	runs := ledgerRuns(t, dbPath)
	if len(runs) != 1 || runs[0].Seed != 20241017 {
		t.Fatalf("%+v", runs)
	}

	cmd = newCommand()
	cmd.SetArgs(append(skippedPlan(dir), "--ledger", dbPath, "--rerun", runs[0].ID))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%+v", err)
	}
	runs = ledgerRuns(t, dbPath)
	if len(runs) != 2 || runs[1].ID == runs[0].ID || runs[1].Seed != runs[0].Seed {
		t.Fatalf("%+v", runs)
	}
}

func TestRerunErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		args   []string
		ledger bool
	}{
		// No ledger to read the seed from.
		{args: []string{"--rerun", "0b7e1c2a-5f4d-4a41-9d7c-1f2e3a4b5c6d"}},
		{args: []string{"--rerun", "no such run"}, ledger: true},
		{args: []string{"--rerun", "no such run", "--seed", "1"}, ledger: true},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%v", test.args), func(t *testing.T) {
			t.Parallel()
			dir, err := os.MkdirTemp("", "")
			if err != nil {
				t.Fatalf("%+v", err)
			}
			defer os.RemoveAll(dir)
			dbPath := filepath.Join(dir, "ledger.db")

			args := append(skippedPlan(dir), test.args...)
			if test.ledger {
				args = append(args, "--ledger", dbPath)
			}
			cmd := newCommand()
			cmd.SetArgs(args)
			if err := cmd.Execute(); err == nil {
				t.Fatalf("expected error")
			}
			if !test.ledger {
				return
			}

			// A failed rerun records nothing.
			if _, err := os.Stat(dbPath); os.IsNotExist(err) {
				return
			}
			if runs := ledgerRuns(t, dbPath); len(runs) != 0 {
				t.Fatalf("%+v", runs)
			}
		})
	}
}

func ledgerRuns(t *testing.T, dbPath string) []numtest.RunRecord {
	ledger, err := numtest.OpenLedger(dbPath)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer ledger.Close()
	runs, err := ledger.Runs()
	if err != nil {
		t.Fatalf("%+v", err)
	}
	return runs
}
