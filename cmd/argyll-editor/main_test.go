package main_test

import (
	"context"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMainExitsOnInvalidConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "go", "run", ".")
	cmd.Env = append(os.Environ(), "STORE_KIND=tape")

	err := cmd.Run()
	assert.Error(t, err)
	assert.NotEqual(t, context.DeadlineExceeded, ctx.Err())
}
