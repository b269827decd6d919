package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"dockexplorer/internal/app"
	"dockexplorer/internal/registry"
	"dockexplorer/internal/secret"
)

func newSecretCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage the Docker Hub token used by the explorer",
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Read a Docker Hub token from stdin and store it",
		Long: "Read a Docker Hub token from stdin and store it under secrets.service/secrets.account.\n" +
			"Available backends: " + strings.Join(secret.Backends(), ", "),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.init(cmd, false); err != nil {
				return err
			}
			defer c.close()

			token, err := readToken(cmd)
			if err != nil {
				return err
			}

			store, err := app.OpenSecrets(c.cfg, registry.NewConfigSource(c.cfg.DockerConfigDir))
			if err != nil {
				return err
			}
			if err := store.WriteSecret(c.cfg.SecretsService, c.cfg.SecretsAccount, token); err != nil {
				return err
			}
			log.Info().Str("service", c.cfg.SecretsService).Str("account", c.cfg.SecretsAccount).Msg("hub token stored")
			return nil
		},
	}
	cmd.AddCommand(set)
	return cmd
}

func readToken(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Docker Hub token: ")
	sc := bufio.NewScanner(cmd.InOrStdin())
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", errors.New("no token on stdin")
	}
	token := strings.TrimSpace(sc.Text())
	if token == "" {
		return "", errors.New("empty token")
	}
	return token, nil
}
