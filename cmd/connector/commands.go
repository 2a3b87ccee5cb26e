package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/connector-fudan/internal/connector"
	cerrors "github.com/dropDatabas3/connector-fudan/internal/connector/errors"
	"github.com/dropDatabas3/connector-fudan/internal/connector/oauth2"
)

// codeExchanger is implemented by connectors that expose the bare token
// exchange.
type codeExchanger interface {
	ExchangeCode(ctx context.Context, data any, redirectURI string) (*oauth2.AccessTokenResponse, error)
}

// exchangeCode runs the bare token exchange, or fails with not_implemented
// when the connector only exposes the full user info flow.
func exchangeCode(ctx context.Context, s connector.Social, code, redirectURI string) (*oauth2.AccessTokenResponse, error) {
	ex, ok := s.(codeExchanger)
	if !ok {
		return nil, cerrors.ErrNotImplemented.WithData(cerrors.Message("connector does not expose a bare code exchange"))
	}
	return ex.ExchangeCode(ctx, map[string]any{"code": code}, redirectURI)
}

func (c *cli) print(w io.Writer, v any) error {
	if c.out == "text" {
		if s, ok := v.(string); ok {
			_, err := fmt.Fprintln(w, s)
			return err
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newMetadataCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "metadata",
		Short: "Print the connector metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.social()
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), s.Metadata())
		},
	}
}

func newAuthorizeURLCmd(c *cli) *cobra.Command {
	var state, redirectURI string
	cmd := &cobra.Command{
		Use:   "authorize-url",
		Short: "Build the provider authorization URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.social()
			if err != nil {
				return err
			}
			uri, err := s.GetAuthorizationURI(cmd.Context(), connector.AuthorizationURIInput{
				State:       state,
				RedirectURI: c.redirectOr(redirectURI),
			})
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), uri)
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "opaque state echoed back on the callback")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "callback URL (default: connector.redirect_uri)")
	return cmd
}

func newExchangeCmd(c *cli) *cobra.Command {
	var code, redirectURI string
	cmd := &cobra.Command{
		Use:   "exchange",
		Short: "Exchange an authorization code for tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.social()
			if err != nil {
				return err
			}
			tok, err := exchangeCode(cmd.Context(), s, code, c.redirectOr(redirectURI))
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), tok.Token(time.Now()))
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "authorization code from the callback")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "callback URL used for the authorization request")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

func newRefreshCmd(c *cli) *cobra.Command {
	var refreshToken string
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Exchange a refresh token for a new access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.social()
			if err != nil {
				return err
			}
			tok, err := s.RefreshToken(cmd.Context(), refreshToken)
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), tok.Token(time.Now()))
		},
	}
	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "refresh token issued by the provider")
	_ = cmd.MarkFlagRequired("refresh-token")
	return cmd
}

func newUserInfoCmd(c *cli) *cobra.Command {
	var code, redirectURI string
	cmd := &cobra.Command{
		Use:   "userinfo",
		Short: "Exchange a code and print the mapped user profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.social()
			if err != nil {
				return err
			}
			info, err := s.GetUserInfo(cmd.Context(), map[string]any{"code": code}, c.redirectOr(redirectURI))
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), info)
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "authorization code from the callback")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "callback URL used for the authorization request")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

func (c *cli) redirectOr(uri string) string {
	if uri != "" {
		return uri
	}
	return c.cfg.Connector.RedirectURI
}
