package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "goeconomy-cli",
		Short: "GoEconomy CLI tool",
		Long:  `A command line interface for interacting with the GoEconomy API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the GoEconomy API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(accountCmd())
	rootCmd.AddCommand(balanceCmd())
	rootCmd.AddCommand(payCmd())
	rootCmd.AddCommand(receiptCmd())
	rootCmd.AddCommand(currencyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var identifier string

	createCmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			request(http.MethodPost, "/api/v1/accounts", map[string]string{
				"identifier": identifier,
				"name":       args[0],
			})
		},
	}
	createCmd.Flags().StringVar(&identifier, "id", "", "External id for a player account")

	getCmd := &cobra.Command{
		Use:   "get [identifier]",
		Short: "Look up an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			request(http.MethodGet, "/api/v1/accounts/"+args[0], nil)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every account",
		Run: func(cmd *cobra.Command, args []string) {
			request(http.MethodGet, "/api/v1/accounts", nil)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [identifier]",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			request(http.MethodDelete, "/api/v1/accounts/"+args[0], nil)
		},
	}

	cmd.AddCommand(createCmd, getCmd, listCmd, deleteCmd)

	return cmd
}

func balanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Balance operations",
	}

	var region, currency, handler string

	getCmd := &cobra.Command{
		Use:   "get [identifier]",
		Short: "Show one balance",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path := fmt.Sprintf("/api/v1/accounts/%s/balance?region=%s&currency=%s&handler=%s",
				args[0], region, currency, handler)
			request(http.MethodGet, path, nil)
		},
	}
	getCmd.Flags().StringVar(&region, "region", "world", "Region to read")
	getCmd.Flags().StringVar(&currency, "currency", "dollar", "Currency identifier")
	getCmd.Flags().StringVar(&handler, "handler", "normal", "Holdings handler")

	listCmd := &cobra.Command{
		Use:   "list [identifier]",
		Short: "Show every balance an account holds",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			request(http.MethodGet, "/api/v1/accounts/"+args[0]+"/balances", nil)
		},
	}

	setCmd := &cobra.Command{
		Use:   "set [identifier] [amount]",
		Short: "Overwrite one balance",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			request(http.MethodPut, "/api/v1/accounts/"+args[0]+"/balance", map[string]string{
				"region":   region,
				"currency": currency,
				"handler":  handler,
				"amount":   args[1],
			})
		},
	}
	setCmd.Flags().StringVar(&region, "region", "world", "Region to write")
	setCmd.Flags().StringVar(&currency, "currency", "dollar", "Currency identifier")
	setCmd.Flags().StringVar(&handler, "handler", "normal", "Holdings handler")

	cmd.AddCommand(getCmd, listCmd, setCmd)

	return cmd
}

func payCmd() *cobra.Command {
	var region, currency, transactionType, source string

	cmd := &cobra.Command{
		Use:   "pay [from] [to] [amount]",
		Short: "Transfer funds between two accounts",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			request(http.MethodPost, "/api/v1/transactions", map[string]string{
				"from":     args[0],
				"to":       args[1],
				"amount":   args[2],
				"region":   region,
				"currency": currency,
				"type":     transactionType,
				"source":   source,
			})
		},
	}
	cmd.Flags().StringVar(&region, "region", "world", "Region the transfer happens in")
	cmd.Flags().StringVar(&currency, "currency", "dollar", "Currency identifier")
	cmd.Flags().StringVar(&transactionType, "type", "pay", "Transaction type")
	cmd.Flags().StringVar(&source, "source", "cli", "Transaction source")

	return cmd
}

func receiptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipt",
		Short: "Receipt operations",
	}

	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Fetch a receipt by id",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			request(http.MethodGet, "/api/v1/receipts/"+args[0], nil)
		},
	}

	var limit, offset int

	listCmd := &cobra.Command{
		Use:   "list [identifier]",
		Short: "List receipts touching an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path := fmt.Sprintf("/api/v1/accounts/%s/receipts?limit=%d&offset=%d", args[0], limit, offset)
			request(http.MethodGet, path, nil)
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Maximum receipts to return")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Receipts to skip")

	cmd.AddCommand(getCmd, listCmd)

	return cmd
}

func currencyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "currency",
		Short: "Currency operations",
	}

	var region string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered currencies",
		Run: func(cmd *cobra.Command, args []string) {
			path := "/api/v1/currencies"
			if region != "" {
				path += "?region=" + region
			}
			request(http.MethodGet, path, nil)
		},
	}
	listCmd.Flags().StringVar(&region, "region", "", "Only currencies enabled in this region")

	getCmd := &cobra.Command{
		Use:   "get [identifier]",
		Short: "Look up a currency",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			request(http.MethodGet, "/api/v1/currencies/"+args[0], nil)
		},
	}

	cmd.AddCommand(listCmd, getCmd)

	return cmd
}

// request performs one API call and prints the decoded response. Non-2xx
// responses print the body and exit non-zero.
func request(method, path string, body any) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			fmt.Printf("Error encoding request: %v\n", err)
			os.Exit(1)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(raw))
		os.Exit(1)
	}

	if len(raw) == 0 {
		fmt.Println("OK")
		return
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		fmt.Println(string(raw))
		return
	}

	printJSON(decoded)
}

func printJSON(v any) {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to encode response: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(encoded))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}

	return s[:max-3] + "..."
}
