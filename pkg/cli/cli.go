// Package cli is the imgfuse command line front end.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Fepozopo/imgfuse/pkg/fusion"
	"github.com/Fepozopo/imgfuse/pkg/stdimg"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: imgfuse <command> [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  fuse     -fg REF -bg REF -o FILE   composite and write the result (-o - for PNG on stdout)")
	fmt.Fprintln(w, "  preview  -fg REF -bg REF           composite and show the result in the terminal")
	fmt.Fprintln(w, "  inspect  REF                       print opaque bounds and colour statistics")
	fmt.Fprintln(w, "  version                            print the version")
	fmt.Fprintln(w, "  update                             check GitHub for a newer release")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "REF is a path, file://, http(s)://, data: or s3://bucket/key URL; \"/\" picks a file with fzf.")
}

// App wires the command line to the pipeline. The zero value is not usable;
// see Run.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Env    Env

	// newLoader is replaced in tests
	newLoader func(ctx context.Context, refs ...string) (*fusion.Loader, error)
}

// Run loads .env, reads the environment and executes args (without the
// program name). It returns the process exit code.
func Run(ctx context.Context, args []string) int {
	if err := LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}
	env, err := LoadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	app := &App{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr, Env: env}
	return app.Run(ctx, args)
}

// Run executes one command.
func (a *App) Run(ctx context.Context, args []string) int {
	fusion.SetLogger(slog.New(slog.NewTextHandler(a.Stderr, &slog.HandlerOptions{Level: a.Env.LogLevel})))
	if len(args) == 0 {
		usage(a.Stderr)
		return 2
	}
	var err error
	switch args[0] {
	case "fuse":
		err = a.fuse(ctx, args[1:])
	case "preview":
		err = a.preview(ctx, args[1:])
	case "inspect":
		err = a.inspect(ctx, args[1:])
	case "version", "-version", "--version":
		fmt.Fprintf(a.Stdout, "imgfuse %s\n", Version)
	case "update":
		err = CheckForUpdates(ctx, a.Stdin, a.Stdout)
	case "help", "-h", "-help", "--help":
		usage(a.Stdout)
	default:
		fmt.Fprintf(a.Stderr, "unknown command %q\n\n", args[0])
		usage(a.Stderr)
		return 2
	}
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if errors.Is(err, errUsage) {
		return 2
	}
	if err != nil {
		fmt.Fprintf(a.Stderr, "imgfuse %s: %v\n", args[0], err)
		return 1
	}
	return 0
}

var errUsage = errors.New("usage")

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	return fs
}

// parse runs fs.Parse and folds reported parse errors into errUsage.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	return nil
}

func (a *App) loader(ctx context.Context, refs ...string) (*fusion.Loader, error) {
	if a.newLoader != nil {
		return a.newLoader(ctx, refs...)
	}
	cfg := fusion.LoaderConfig{HTTPTimeout: a.Env.HTTPTimeout}
	for _, r := range refs {
		if strings.HasPrefix(strings.ToLower(r), "s3://") {
			client, err := fusion.NewS3Client(ctx, a.Env.S3)
			if err != nil {
				return nil, err
			}
			cfg.S3 = client
			break
		}
	}
	return fusion.NewLoader(cfg), nil
}

// pairFlags parses -fg/-bg plus the option flags, resolving "/" via fzf.
func (a *App) pairFlags(fs *flag.FlagSet, args []string) (fg, bg string, opts fusion.Options, err error) {
	fs.StringVar(&fg, "fg", "", "foreground (cutout) reference")
	fs.StringVar(&bg, "bg", "", "background reference")
	of := newOptionFlags(fs)
	if err = parse(fs, args); err != nil {
		return
	}
	if fg == "" || bg == "" {
		fmt.Fprintln(a.Stderr, "both -fg and -bg are required")
		fs.Usage()
		err = errUsage
		return
	}
	if fg, err = pickRef(fg, "foreground", a.Stdout); err != nil {
		return
	}
	if bg, err = pickRef(bg, "background", a.Stdout); err != nil {
		return
	}
	opts, err = of.options(a.Env)
	return
}

func (a *App) fuse(ctx context.Context, args []string) error {
	fs := a.flagSet("fuse")
	out := fs.String("o", "", "output file (.png, .jpg, .gif); - writes PNG to stdout")
	fg, bg, opts, err := a.pairFlags(fs, args)
	if err != nil {
		return err
	}
	if *out == "" {
		fmt.Fprintln(a.Stderr, "-o is required")
		return errUsage
	}
	l, err := a.loader(ctx, fg, bg)
	if err != nil {
		return err
	}
	img, err := fusion.NewEngine(l).FuseImage(ctx, fg, bg, opts)
	if err != nil {
		return err
	}
	if *out == "-" {
		return EncodeImage(a.Stdout, ".png", img)
	}
	if err := SaveImage(*out, img); err != nil {
		return fmt.Errorf("save %s: %w", *out, err)
	}
	fmt.Fprintf(a.Stderr, "wrote %s (%dx%d)\n", filepath.Clean(*out), img.Rect.Dx(), img.Rect.Dy())
	return nil
}

func (a *App) preview(ctx context.Context, args []string) error {
	fs := a.flagSet("preview")
	format := fs.String("format", "png", "encoding sent to the terminal: png or jpeg")
	fg, bg, opts, err := a.pairFlags(fs, args)
	if err != nil {
		return err
	}
	l, err := a.loader(ctx, fg, bg)
	if err != nil {
		return err
	}
	canvas := fusion.NewCanvas(0, 0)
	if _, err := fusion.NewEngine(l).Preview(ctx, fg, bg, opts, canvas); err != nil {
		return err
	}
	if !PreviewSupported() && os.Getenv("PREVIEW_BACKEND") == "" {
		fmt.Fprintln(a.Stderr, "no terminal image protocol detected; set PREVIEW_BACKEND or use fuse -o")
	} else if err := PreviewCanvas(a.Stdout, canvas, *format); err != nil {
		return err
	}
	b := canvas.Bounds()
	fmt.Fprintf(a.Stdout, "Canvas: %dx%d (aspect-ratio %s)\n", b.Dx(), b.Dy(), canvas.AspectRatio())
	return nil
}

func (a *App) inspect(ctx context.Context, args []string) error {
	fs := a.flagSet("inspect")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(a.Stderr, "usage: imgfuse inspect REF")
		return errUsage
	}
	ref, err := pickRef(fs.Arg(0), "image", a.Stdout)
	if err != nil {
		return err
	}
	l, err := a.loader(ctx, ref)
	if err != nil {
		return err
	}
	img, err := l.Load(ctx, ref)
	if err != nil {
		return err
	}
	b := stdimg.OpaqueBounds(img)
	st := stdimg.ComputeChannelStats(img)
	fmt.Fprintf(a.Stdout, "Size: %dx%d\n", img.Rect.Dx(), img.Rect.Dy())
	fmt.Fprintf(a.Stdout, "Opaque bounds: x=%d y=%d w=%d h=%d\n", b.Min.X, b.Min.Y, b.Dx(), b.Dy())
	fmt.Fprintf(a.Stdout, "Visible pixels: %d\n", st.Count)
	for c, name := range []string{"R", "G", "B"} {
		fmt.Fprintf(a.Stdout, "%s: mean=%.2f std=%.2f\n", name, st.Mean[c], st.Std[c])
	}
	return nil
}
