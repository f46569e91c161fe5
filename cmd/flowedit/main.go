package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/kode4food/argyll/editor/internal/clipboard"
)

type cli struct {
	out       io.Writer
	clipboard func() (clipboard.Clipboard, error)

	output    string
	format    string
	clipKind  string
	redisAddr string
	redisKey  string
}

const (
	clipSystem = "system"
	clipRedis  = "redis"

	defaultRedisKey = "argyll-editor:clipboard"
)

func main() {
	c := &cli{out: os.Stdout}
	if err := c.rootCommand().ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "flowedit",
		Short:         "Edit flow version files offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&c.output, "output", "o", "",
		"write the resulting flow to this file instead of stdout")
	root.PersistentFlags().StringVar(&c.format, "format", "",
		"output format: yaml or json (defaults to the input format)")
	root.PersistentFlags().StringVar(&c.clipKind, "clipboard", clipSystem,
		"clipboard to copy to and paste from: system or redis")
	root.PersistentFlags().StringVar(&c.redisAddr, "redis-addr",
		"localhost:6379", "redis address for the shared clipboard")
	root.PersistentFlags().StringVar(&c.redisKey, "redis-key",
		defaultRedisKey, "redis key holding the shared clipboard")

	root.AddCommand(
		c.stepsCommand(),
		c.applyCommand(),
		c.copyCommand(),
		c.pasteCommand(),
	)
	return root
}

func (c *cli) openClipboard() (clipboard.Clipboard, error) {
	if c.clipboard != nil {
		return c.clipboard()
	}
	switch c.clipKind {
	case clipSystem:
		return clipboard.NewSystem()
	case clipRedis:
		client := redis.NewClient(&redis.Options{Addr: c.redisAddr})
		return clipboard.NewRedis(
			client, c.redisKey, clipboard.DefaultRedisTTL,
		), nil
	default:
		return nil, fmt.Errorf("unknown clipboard %q", c.clipKind)
	}
}

func (c *cli) withTimeout(
	cmd *cobra.Command,
) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 10*time.Second)
}
