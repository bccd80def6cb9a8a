package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/najahiiii/telebot-send/internal/cli"
	"github.com/najahiiii/telebot-send/internal/config"
	"github.com/najahiiii/telebot-send/internal/logging"
	"github.com/najahiiii/telebot-send/internal/pipeline"
	"github.com/najahiiii/telebot-send/internal/telegram"
	"github.com/najahiiii/telebot-send/internal/thumbnail"
	"github.com/najahiiii/telebot-send/internal/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, cli.ErrHelp) {
			os.Exit(0)
		}
		logging.Error("%v", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := cli.Parse(args)
	if err != nil {
		return err
	}

	switch {
	case opts.Version:
		fmt.Println(version.Summary())
		return nil
	case opts.Setup:
		seed := config.File{APIURL: opts.APIURL, BotToken: opts.BotToken, ChatID: opts.ChatID}
		path, err := config.Setup(os.Stdin, os.Stdout, seed)
		if err != nil {
			return err
		}
		logging.Info("Configuration saved to %s", path)
		return nil
	case opts.ShowConfig:
		return config.Show(os.Stdout)
	}

	if err := opts.Validate(); err != nil {
		return err
	}
	if err := opts.ResolveCredentials(); err != nil {
		return err
	}

	client, err := telegram.New(opts.APIURL, opts.BotToken, opts.ChatID, opts.ThreadID)
	if err != nil {
		return err
	}

	// Ctrl-C aborts in-flight uploads cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.Check {
		p := pipeline.New(client, thumbnail.Unavailable{})
		return p.Check(ctx)
	}

	if len(opts.Media) > 0 {
		return runMedia(ctx, client, opts)
	}
	return runText(ctx, client, opts)
}

func runMedia(ctx context.Context, client *telegram.Client, opts *cli.Options) error {
	p := pipeline.New(client, thumbnail.NewFFmpeg())
	result, err := p.SendMedia(ctx, pipeline.Options{
		Paths:       opts.Media,
		Caption:     opts.Caption,
		Spoiler:     opts.Spoiler,
		AsFile:      opts.AsFile,
		NoGroup:     opts.NoGroup,
		Silent:      opts.Silent,
		ReplyMarkup: telegram.ReplyMarkup(opts.ButtonText, opts.ButtonURL),
	})
	if result != nil && result.Skipped > 0 {
		logging.Warn("Skipped %d of %d inputs", result.Skipped, len(opts.Media))
	}
	return err
}

func runText(ctx context.Context, client *telegram.Client, opts *cli.Options) error {
	p := pipeline.New(client, thumbnail.Unavailable{})
	return p.SendText(ctx, opts.Message, opts.Silent, telegram.ReplyMarkup(opts.ButtonText, opts.ButtonURL))
}
