package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"github.com/tombowditch/ptpb/client"
	"github.com/tombowditch/ptpb/internal/config"
	"github.com/tombowditch/ptpb/internal/input"
)

type modes struct {
	Create bool   `short:"c" long:"create" description:"create a paste (default)"`
	Delete string `short:"d" long:"delete" description:"delete a paste" value-name:"ID"`
	Update string `short:"u" long:"update" description:"update a paste" value-name:"ID"`
	Get    string `short:"g" long:"get" description:"get a paste" value-name:"ID"`
}

type options struct {
	Modes modes `group:"operating modes"`

	Label       string  `short:"l" long:"label" description:"set custom label for paste"`
	Private     bool    `short:"p" long:"private" description:"set paste to private"`
	Sunset      float64 `short:"s" long:"sunset" description:"set expiry time for paste in seconds"`
	ContentType string  `short:"t" long:"content-type" description:"set content-type for paste"`
	FileName    string  `short:"f" long:"filename" description:"set file name for paste"`
	BaseURL     string  `short:"a" long:"base-url" description:"set base url for pb instance (default: https://pybin.pw)"`

	Config  string `long:"config" description:"read settings from this YAML file"`
	Verbose bool   `short:"v" long:"verbose" description:"log requests to stderr"`

	Args struct {
		File string `positional-arg-name:"FILE" description:"file to upload; stdin if omitted"`
	} `positional-args:"yes"`
}

const examples = `Examples:
  ptpb thing.txt                                upload thing.txt
  do-stuff | ptpb                               upload output of command
  ptpb -d bfb8d7eb-3664-4ab8-9089-b2fa4640464c  delete provided paste`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag)
	parser.Name = "ptpb"
	parser.Usage = "[mode] [options] [FILE]"

	rest, err := parser.ParseArgs(args)
	if err != nil {
		var flagErr *flags.Error
		if errors.As(err, &flagErr) && flagErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, flagErr.Message)
			fmt.Fprintln(stdout, examples)
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 1
	}
	if len(rest) > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", rest)
		return 1
	}

	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetLevel(logrus.WarnLevel)
	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		logger.WithError(err).Error("could not load config")
		return 1
	}
	applyConfig(&opts, cfg)

	c := client.New(
		client.WithBaseURL(opts.BaseURL),
		client.WithLogger(logger),
	)

	if err := execute(context.Background(), c, &opts, stdin, stdout); err != nil {
		logger.WithError(err).Error("request failed")
		return 1
	}
	return 0
}

// applyConfig fills in settings from the config file or environment that
// were not given on the command line.
func applyConfig(opts *options, cfg *config.Config) {
	if opts.BaseURL == "" {
		opts.BaseURL = cfg.BaseURL
	}
	if opts.Sunset == 0 {
		opts.Sunset = cfg.Sunset
	}
	opts.Private = opts.Private || cfg.Private
}

func pasteOptions(opts *options) client.PasteOptions {
	return client.PasteOptions{
		FileName:    opts.FileName,
		ContentType: opts.ContentType,
		Private:     opts.Private,
		Sunset:      opts.Sunset,
	}
}

// execute runs the selected mode. Delete wins over update, update over get;
// anything else creates.
func execute(ctx context.Context, c *client.Client, opts *options, stdin io.Reader, stdout io.Writer) error {
	switch {
	case opts.Modes.Delete != "":
		meta, err := c.Delete(ctx, opts.Modes.Delete)
		if err != nil {
			return err
		}
		return printMetadata(stdout, meta)

	case opts.Modes.Update != "":
		content, err := input.Resolve(opts.Args.File, stdin)
		if err != nil {
			return err
		}
		defer content.Close()

		meta, err := c.Update(ctx, opts.Modes.Update, content, pasteOptions(opts))
		if err != nil {
			return err
		}
		return printMetadata(stdout, meta)

	case opts.Modes.Get != "":
		data, err := c.Get(ctx, opts.Modes.Get)
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err

	default:
		content, err := input.Resolve(opts.Args.File, stdin)
		if err != nil {
			return err
		}
		defer content.Close()

		po := pasteOptions(opts)
		po.Label = opts.Label
		meta, err := c.Create(ctx, content, po)
		if err != nil {
			return err
		}
		return printMetadata(stdout, meta)
	}
}

func printMetadata(w io.Writer, meta client.Metadata) error {
	out, err := meta.Bytes()
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
