package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"

	"github.com/mikey/sms-risk-detector/internal/adapters/filter"
	"github.com/mikey/sms-risk-detector/internal/core"
	"github.com/mikey/sms-risk-detector/internal/di"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(func(logger *zap.Logger, cli *filter.CliFilter) error {
		defer logger.Sync()
		return run(flags, logger, cli)
	}); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(flags *di.CLIFlags, logger *zap.Logger, cli *filter.CliFilter) error {
	ctx := context.Background()

	if flags.Message != "" {
		_, err := cli.ProcessMessage(ctx, flags.Message)
		return err
	}

	var input io.Reader = os.Stdin
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		input = file
		logger.Debug("Reading input from file", zap.String("file", flags.InputFile))
	} else {
		logger.Debug("Reading input from stdin")
	}

	if !flags.Email {
		data, err := io.ReadAll(input)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		_, err = cli.ProcessMessage(ctx, string(data))
		return err
	}

	email, err := readEmail(input)
	if err != nil {
		return err
	}
	_, err = cli.ProcessEmail(ctx, email)
	return err
}

func readEmail(r io.Reader) (*core.Email, error) {
	msg, err := mail.ReadMessage(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("failed to parse email: %w", err)
	}

	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read email body: %w", err)
	}

	email := &core.Email{
		From:    msg.Header.Get("From"),
		Subject: msg.Header.Get("Subject"),
		Body:    string(body),
		Headers: make(map[string][]string, len(msg.Header)),
	}
	for _, to := range strings.Split(msg.Header.Get("To"), ",") {
		if to = strings.TrimSpace(to); to != "" {
			email.To = append(email.To, to)
		}
	}
	for k, v := range msg.Header {
		email.Headers[k] = v
	}
	return email, nil
}
