// pagestack is an interactive console for assembling images into a PDF.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"k8s.io/klog/v2"

	"github.com/tstromberg/pagestack/pkg/pagestack"
)

var (
	configPath = flag.String("config", "", "Location of YAML configuration file")
	preview    = flag.String("preview", "", "Location to render the selected image preview to (JPEG)")
	quality    = flag.Int("quality", 85, "JPEG quality of the rendered preview")
	scratchDir = flag.String("scratch", "", "Directory to assemble documents in before saving")
	metadata   = flag.Bool("metadata", false, "read titles and keywords with exiftool")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	c, err := config()
	if err != nil {
		klog.Exitf("config: %v", err)
	}

	s := pagestack.NewSession(c)
	defer func() {
		if err := s.Close(); err != nil {
			klog.Errorf("close: %v", err)
		}
	}()

	run(s, os.Stdin, os.Stdout)
}

// config loads the config file, then applies any flags that were set explicitly.
func config() (*pagestack.Config, error) {
	c := pagestack.DefaultConfig()
	if *configPath != "" {
		var err error
		c, err = pagestack.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "preview":
			c.PreviewPath = *preview
		case "quality":
			c.PreviewQuality = *quality
		case "scratch":
			c.ScratchDir = *scratchDir
		case "metadata":
			c.ReadMetadata = *metadata
		}
	})

	return c, c.Validate()
}

const usage = `commands:
  add PATH      add an image
  adddir DIR    add every image in a directory
  select N      show image N
  rotate        rotate the shown image 90 degrees counter-clockwise
  flip          mirror the shown image left to right
  list          list images
  export PATH   save all images as a PDF
  quit`

// run reads commands from in until EOF or quit. Core errors are reported
// and never end the session.
func run(s *pagestack.Session, in io.Reader, out io.Writer) {
	fmt.Fprintln(out, usage)
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(sc.Text()), " ")
		arg = strings.TrimSpace(arg)
		if cmd == "quit" || cmd == "exit" {
			return
		}

		if err := dispatch(s, out, cmd, arg); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func dispatch(s *pagestack.Session, out io.Writer, cmd string, arg string) error {
	switch cmd {
	case "":
		return nil
	case "help":
		fmt.Fprintln(out, usage)
	case "add":
		i, err := s.Add(arg)
		if i >= 0 {
			fmt.Fprintf(out, "added image %d\n", i)
		}
		return err
	case "adddir":
		if arg == "" {
			return nil
		}
		n, err := s.AddDir(arg)
		fmt.Fprintf(out, "added %d images\n", n)
		return err
	case "select":
		i, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("select needs a number: %w", err)
		}
		return s.Select(i)
	case "rotate":
		return s.Rotate()
	case "flip":
		return s.Flip()
	case "list":
		list(s, out)
	case "export":
		if err := s.Export(arg); err != nil {
			return err
		}
		if arg != "" {
			fmt.Fprintf(out, "saved %d pages to %s\n", s.Len(), arg)
		}
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

func list(s *pagestack.Session, out io.Writer) {
	if s.Len() == 0 {
		fmt.Fprintln(out, "no images")
		return
	}
	for _, p := range s.Pages() {
		mark := " "
		if p.Selected {
			mark = "*"
		}
		fmt.Fprintf(out, "%s %d  %s  %s (preview %s)\n", mark, p.Index, p.Path, p.Size, p.PreviewSize)
	}
}
