package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/breathfree/quit_go_server/pkg/client"
)

const envAPIURL = "QUIT_API_URL"

var stateDir string

var rootCmd = &cobra.Command{
	Use:           "quitctl",
	Short:         "Command line client for the quit-smoking service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	defaultDir := ".quitctl"
	if dir, err := os.UserConfigDir(); err == nil {
		defaultDir = filepath.Join(dir, "quitctl")
	}
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", defaultDir, "Directory holding the token and pending payment")

	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd, smokingCmd, logCmd, planCmd, payCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func tokenPath() string {
	return filepath.Join(stateDir, "token")
}

func intentPath() string {
	return filepath.Join(stateDir, "payment.json")
}

// newClient 从环境变量读取 API 地址，并带上已保存的 token
func newClient() (*client.Client, error) {
	baseURL := strings.TrimSpace(os.Getenv(envAPIURL))
	if baseURL == "" {
		return nil, fmt.Errorf("%s is not set", envAPIURL)
	}

	var opts []client.Option
	if data, err := os.ReadFile(tokenPath()); err == nil {
		opts = append(opts, client.WithToken(strings.TrimSpace(string(data))))
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read token: %w", err)
	}
	return client.New(baseURL, opts...)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
