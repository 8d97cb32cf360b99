package main

import (
	"docs-debug/client"
	"docs-debug/header"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// invocationFlags are shared by invoke and curl.
type invocationFlags struct {
	headers   []string
	mimeTypes []string
	body      string
	bodyFile  string
	path      string
	query     string
}

func (f *invocationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, `Request header as "name: value", repeatable`)
	cmd.Flags().StringSliceVar(&f.mimeTypes, "mime-type", nil, "Debug mime types offered to the transport (default: every type the method accepts)")
	cmd.Flags().StringVarP(&f.body, "body", "d", "", "Request body")
	cmd.Flags().StringVar(&f.bodyFile, "body-file", "", `Read the request body from a file, "-" for stdin`)
	cmd.Flags().StringVar(&f.path, "path", "", "Explicit request path for annotated HTTP services")
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "Query string for annotated HTTP services")
}

func (f *invocationFlags) invocation(args []string) (*client.Invocation, error) {
	headers, err := parseHeaders(f.headers)
	if err != nil {
		return nil, err
	}
	body, err := readBody(f.body, f.bodyFile)
	if err != nil {
		return nil, err
	}
	return &client.Invocation{
		Service:      args[0],
		Method:       args[1],
		MimeTypes:    f.mimeTypes,
		Headers:      headers,
		Body:         body,
		EndpointPath: f.path,
		Queries:      f.query,
	}, nil
}

func parseHeaders(raw []string) (*header.Map, error) {
	h := header.NewMap()
	for _, line := range raw {
		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q, want \"name: value\"", line)
		}
		h.Set(name, strings.TrimSpace(value))
	}
	return h, nil
}

func newInvokeCmd(a *app) *cobra.Command {
	var f invocationFlags
	cmd := &cobra.Command{
		Use:   "invoke SERVICE METHOD",
		Short: "Send a debug invocation and print the response",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := f.invocation(args)
			if err != nil {
				return err
			}
			c, err := a.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			resp, err := c.Invoke(ctx, inv)
			if err != nil {
				return fmt.Errorf("invoke %s.%s: %w", inv.Service, inv.Method, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newCurlCmd(a *app) *cobra.Command {
	var f invocationFlags
	cmd := &cobra.Command{
		Use:   "curl SERVICE METHOD",
		Short: "Print the curl command reproducing a debug invocation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := f.invocation(args)
			if err != nil {
				return err
			}
			c, err := a.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			line, err := c.Curl(ctx, inv)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
