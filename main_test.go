package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCmdRequiresPort(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	require.Error(t, err)
}

func TestRootCmdRejectsNonNumericPort(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"not-a-port"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	require.Error(t, err)
}

func TestRootCmdRejectsOutOfRangePort(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"99999"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	require.Error(t, err)
}

func TestRootCmdRejectsInvalidLogLevel(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"0", "--log-level", "not-a-level"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	require.Error(t, err)
}
