package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCmdIsConfigured(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "template-auditor", rootCmd.Name())
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("input"))
}
