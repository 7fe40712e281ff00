package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootFlagSurface(t *testing.T) {
	root := NewRootCmd(Options{})

	for flag, shorthand := range map[string]string{
		"continuous":    "c",
		"parallel":      "p",
		"full-parallel": "f",
	} {
		f := root.Flags().Lookup(flag)
		require.NotNil(t, f, "missing flag --%s", flag)
		assert.Equal(t, shorthand, f.Shorthand)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestSubcommandsRegistered(t *testing.T) {
	root := NewRootCmd(Options{})

	names := make(map[string]bool)
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["stats"])
	assert.True(t, names["reset"])
}

func TestResetRefusesWithoutConfirmation(t *testing.T) {
	root := NewRootCmd(Options{})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"reset"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}
