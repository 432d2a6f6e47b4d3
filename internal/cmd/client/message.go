package client

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// NewMessageCommand constructs the `message` command group and subcommands.
func NewMessageCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{Use: "message", Short: "Message operations"}
	cmd.AddCommand(
		newMessagePushCommand(baseURL),
		newMessageHistoryCommand(baseURL),
		newMessageDeleteCommand(baseURL),
		newMessageSubscribeCommand(baseURL),
	)
	return cmd
}

// newMessagePushCommand constructs the `message push` subcommand.
func newMessagePushCommand(baseURL BaseURLFunc) *cobra.Command {
	pushCmd := &cobra.Command{
		Use:   "push",
		Short: "Push a message to a subscriber key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, _ := cmd.Flags().GetString("key")
			msg, _ := cmd.Flags().GetString("message")
			b, _ := json.Marshal(map[string]string{"key": key, "message": msg})
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, baseURL()+"/api/push", bytes.NewReader(b))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}
	pushCmd.Flags().StringP("key", "k", "", "Subscriber key")
	pushCmd.Flags().StringP("message", "m", "", "Message content")
	_ = pushCmd.MarkFlagRequired("key")
	_ = pushCmd.MarkFlagRequired("message")
	return pushCmd
}

// newMessageHistoryCommand constructs the `message history` subcommand.
func newMessageHistoryCommand(baseURL BaseURLFunc) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List stored messages for a key, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, _ := cmd.Flags().GetString("key")
			page, _ := cmd.Flags().GetInt("page")
			limit, _ := cmd.Flags().GetInt("limit")
			q := url.Values{}
			if page > 0 {
				q.Set("page", fmt.Sprint(page))
			}
			if limit > 0 {
				q.Set("limit", fmt.Sprint(limit))
			}
			u := baseURL() + "/api/history/" + url.PathEscape(key)
			if len(q) > 0 {
				u += "?" + q.Encode()
			}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, u, nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}
	historyCmd.Flags().StringP("key", "k", "", "Subscriber key")
	historyCmd.Flags().Int("page", 1, "Page number (1-based)")
	historyCmd.Flags().Int("limit", 0, "Page size (0 = server default)")
	_ = historyCmd.MarkFlagRequired("key")
	return historyCmd
}

// newMessageDeleteCommand constructs the `message delete` subcommand.
func newMessageDeleteCommand(baseURL BaseURLFunc) *cobra.Command {
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Soft-delete messages by id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, _ := cmd.Flags().GetString("key")
			ids, _ := cmd.Flags().GetInt64Slice("ids")
			uids := make([]uint64, 0, len(ids))
			for _, id := range ids {
				if id > 0 {
					uids = append(uids, uint64(id))
				}
			}
			b, _ := json.Marshal(map[string]any{"ids": uids})
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodDelete,
				baseURL()+"/api/messages/"+url.PathEscape(key), bytes.NewReader(b))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}
	deleteCmd.Flags().StringP("key", "k", "", "Subscriber key")
	deleteCmd.Flags().Int64Slice("ids", nil, "Message ids to delete")
	_ = deleteCmd.MarkFlagRequired("key")
	_ = deleteCmd.MarkFlagRequired("ids")
	return deleteCmd
}

// newMessageSubscribeCommand constructs the `message subscribe` subcommand.
// It prints each SSE frame as one JSON line until interrupted.
func newMessageSubscribeCommand(baseURL BaseURLFunc) *cobra.Command {
	subscribeCmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Stream live messages for a key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, _ := cmd.Flags().GetString("key")
			replay, _ := cmd.Flags().GetBool("replay")
			filter, _ := cmd.Flags().GetString("filter")
			q := url.Values{}
			if replay {
				q.Set("replay", "1")
			}
			if filter != "" {
				q.Set("filter", filter)
			}
			u := baseURL() + "/api/sse/" + url.PathEscape(key)
			if len(q) > 0 {
				u += "?" + q.Encode()
			}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, u, nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return printResponse(cmd.OutOrStdout(), resp)
			}
			sc := bufio.NewScanner(resp.Body)
			for sc.Scan() {
				line := strings.TrimSpace(sc.Text())
				if strings.HasPrefix(line, "data: ") {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimPrefix(line, "data: "))
				}
			}
			// Stream ends on disconnect or eviction; either way it is a clean exit.
			return nil
		},
	}
	subscribeCmd.Flags().StringP("key", "k", "", "Subscriber key")
	subscribeCmd.Flags().Bool("replay", false, "Resend the cached last message on connect")
	subscribeCmd.Flags().String("filter", "", "CEL filter (server-side)")
	_ = subscribeCmd.MarkFlagRequired("key")
	return subscribeCmd
}
