package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bixoto/bigbuy-go/bigbuy"
)

var noConfirm bool

// orderCmd represents the order command
var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Check, create and look up BigBuy orders",
	Long: `Check or create orders from a JSON file. The file holds either the order
itself or BigBuy's {"order": {...}} envelope. An order without an
internalReference is given a random one.`,
}

var orderCheckCmd = &cobra.Command{
	Use:   "check <file.json>",
	Short: "Simulate an order and show what it would cost",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrderCheck,
}

var orderCreateCmd = &cobra.Command{
	Use:   "create <file.json>",
	Short: "Create an order",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrderCreate,
}

var orderGetCmd = &cobra.Command{
	Use:   "get <order-id>",
	Short: "Show an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := client.GetOrderByID(cmd.Context(), args[0], nil)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), order)
	},
}

func init() {
	rootCmd.AddCommand(orderCmd)
	orderCmd.AddCommand(orderCheckCmd, orderCreateCmd, orderGetCmd)

	orderCreateCmd.Flags().BoolVar(&noConfirm, "no-confirm", false, "skip confirmation prompt")
}

func runOrderCheck(cmd *cobra.Command, args []string) error {
	order, err := readOrder(args[0])
	if err != nil {
		return err
	}

	result, err := client.CheckOrder(cmd.Context(), order)
	if err != nil {
		return fmt.Errorf("order %s rejected: %w", order.InternalReference, err)
	}

	if !jsonOutput {
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Order %s is valid\n", order.InternalReference)
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func runOrderCreate(cmd *cobra.Command, args []string) error {
	order, err := readOrder(args[0])
	if err != nil {
		return err
	}

	if !noConfirm {
		ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(),
			fmt.Sprintf("Create order %s with %d product line(s) on %s?", order.InternalReference, len(order.Products), cfg.BigBuy.Mode))
		if err != nil {
			return err
		}
		if !ok {
			logger.Info().Msg("Order creation cancelled")
			return nil
		}
	}

	created, err := client.CreateOrder(cmd.Context(), order)
	if err != nil {
		return fmt.Errorf("failed to create order %s: %w", order.InternalReference, err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), created)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created order %s (%s)\n", created.ID, created.Location)
	return nil
}

// readOrder reads an order file, with or without the order envelope.
func readOrder(path string) (*bigbuy.Order, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read order file: %w", err)
	}
	return decodeOrder(data)
}

func decodeOrder(data []byte) (*bigbuy.Order, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("invalid order file: %w", err)
	}
	if inner, ok := envelope["order"]; ok && len(envelope) == 1 {
		data = inner
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var order bigbuy.Order
	if err := dec.Decode(&order); err != nil {
		return nil, fmt.Errorf("invalid order file: %w", err)
	}

	if order.InternalReference == "" {
		order.InternalReference = uuid.NewString()
		logger.Info().Str("internal_reference", order.InternalReference).Msg("Generated internal reference")
	}
	return &order, nil
}

func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return strings.ToLower(strings.TrimSpace(response)) == "y", nil
}
