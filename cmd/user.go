package main

import (
	"context"
	"fmt"

	"bug-lifecycle-tracker/config"
	"bug-lifecycle-tracker/internal/auth"
	"bug-lifecycle-tracker/internal/repository"
	"bug-lifecycle-tracker/internal/usecase"

	"github.com/spf13/cobra"
)

func newUserCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user records",
	}
	cmd.AddCommand(newUserAddCommand(a))
	return cmd
}

func newUserAddCommand(a *app) *cobra.Command {
	var (
		name      string
		email     string
		withToken bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Storage.Backend == config.BackendMemory {
				a.log.Warnw("memory storage is not persisted, the user is lost on exit")
			}
			ctx := cmd.Context()
			repo, err := repository.New(ctx, a.cfg.Storage.Backend, a.log, a.cfg)
			if err != nil {
				return err
			}
			if err := repo.OnStart(ctx); err != nil {
				return err
			}
			defer func() {
				_ = repo.OnStop(context.Background())
			}()

			uc := usecase.New(a.log, ctx, repo, a.cfg.HTTP.RequestTimeout)
			user, err := uc.RegisterUser(ctx, name, email)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user_id: %s\n", user.ID)

			if withToken {
				token, err := auth.New(a.cfg.Auth).Issue(user.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "token: %s\n", token)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().BoolVar(&withToken, "token", false, "also print an access token for the new user")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
