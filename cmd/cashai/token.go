package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/Shrey257/CashAI/internal/service"

	"github.com/spf13/cobra"
)

var flagTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token for local testing",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVarP(&flagUser, "user", "u", "", "User id (token subject)")
	tokenCmd.Flags().DurationVar(&flagTTL, "ttl", 0, "Token lifetime (defaults to JWT_ACCESS_TTL)")
	_ = tokenCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required to issue tokens")
	}

	ttl := flagTTL
	if ttl == 0 {
		ttl = cfg.Auth.JWTAccessTTL
	}

	token, err := service.NewTokenVerifier(cfg.Auth.JWTSecret, ttl).IssueAccessToken(flagUser)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
