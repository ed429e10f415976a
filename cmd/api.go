package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/wrapped/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes an authenticated GET request to the backend.
//
// The request goes through the same refresh-and-retry path as the dashboard.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	compact := cmd.Bool("json")

	query, err := parseQuery(cmd.StringSlice("query"))
	if err != nil {
		return err
	}

	if err := r.requireSession(ctx); err != nil {
		return err
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.client.Get(ctx, path, query)
	if err != nil {
		return err
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, !compact)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

func parseQuery(pairs []string) (url.Values, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	query := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: query %q must be key=value", shared.ErrInvalidFlag, pair)
		}
		query.Add(key, value)
	}
	return query, nil
}
