// Command psdrun renders and inspects LYRD layered documents.
//
// Usage:
//
//	psdrun render   -in doc.lyrd -out out.png [-hide 1,2] [-show 3]
//	psdrun layer    -in doc.lyrd -id 4 -out layer.png
//	psdrun tree     -in doc.lyrd
//	psdrun hints    -in doc.lyrd [-set hints.json]
//	psdrun settext  -in doc.lyrd -id 4 -text "Hello" -out out.png
//	psdrun pack     -out doc.lyrd bottom.png top.png
//
// Every subcommand accepts -font (repeatable) to register font files and
// -v to log to stderr.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	psdrun "github.com/signal-slot/psd-run"
	"github.com/signal-slot/psd-run/container"
)

// command is one subcommand.
type command struct {
	name string
	run  func(args []string) error
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("psdrun: ")

	commands := []command{
		{"render", runRender},
		{"layer", runLayer},
		{"tree", runTree},
		{"hints", runHints},
		{"settext", runSetText},
		{"pack", runPack},
	}

	if len(os.Args) < 2 {
		usage(commands)
	}
	for _, c := range commands {
		if c.name == os.Args[1] {
			if err := c.run(os.Args[2:]); err != nil {
				log.Fatal(err)
			}
			return
		}
	}
	usage(commands)
}

func usage(commands []command) {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.name
	}
	fmt.Fprintf(os.Stderr, "usage: psdrun <%s> [flags]\n", strings.Join(names, "|"))
	os.Exit(2)
}

// fontList collects repeated -font flags.
type fontList []string

func (f *fontList) String() string { return strings.Join(*f, ",") }

func (f *fontList) Set(v string) error {
	*f = append(*f, v)
	return nil
}

// idList parses a comma separated list of layer ids.
type idList []int

func (l *idList) String() string {
	parts := make([]string, len(*l))
	for i, id := range *l {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func (l *idList) Set(v string) error {
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		id, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("bad layer id %q", s)
		}
		*l = append(*l, id)
	}
	return nil
}

// session holds flags shared by every subcommand.
type session struct {
	fs      *flag.FlagSet
	in      *string
	fonts   fontList
	verbose *bool
}

func newSession(name string) *session {
	s := &session{fs: flag.NewFlagSet(name, flag.ExitOnError)}
	s.in = s.fs.String("in", "", "input LYRD document")
	s.verbose = s.fs.Bool("v", false, "log to stderr")
	s.fs.Var(&s.fonts, "font", "font file to register (repeatable)")
	return s
}

// open parses args and loads the input document.
func (s *session) open(args []string) (*psdrun.Runtime, *psdrun.LoadResult, error) {
	if err := s.fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if *s.verbose {
		psdrun.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if *s.in == "" {
		return nil, nil, fmt.Errorf("%s: -in is required", s.fs.Name())
	}

	rt := psdrun.New(container.Decoder{})
	for _, path := range s.fonts {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		families, err := rt.RegisterFont(data, path)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("registered %s: %s", path, strings.Join(families, ", "))
	}

	data, err := os.ReadFile(*s.in)
	if err != nil {
		return nil, nil, err
	}
	res, err := rt.LoadBytes(data)
	if err != nil {
		return nil, nil, err
	}
	return rt, res, nil
}

func runRender(args []string) error {
	s := newSession("render")
	out := s.fs.String("out", "render.png", "output PNG")
	var hidden, shown idList
	s.fs.Var(&hidden, "hide", "layer ids to hide")
	s.fs.Var(&shown, "show", "layer ids to show")

	rt, res, err := s.open(args)
	if err != nil {
		return err
	}
	defer rt.Close()

	img, err := rt.Render(res.Handle, hidden, shown)
	if err != nil {
		return err
	}
	return savePNG(*out, img)
}

func runLayer(args []string) error {
	s := newSession("layer")
	out := s.fs.String("out", "layer.png", "output PNG")
	id := s.fs.Int("id", 0, "layer id")

	rt, res, err := s.open(args)
	if err != nil {
		return err
	}
	defer rt.Close()

	img, err := rt.LayerImage(res.Handle, *id)
	if err != nil {
		return err
	}
	log.Printf("layer %d at (%d,%d)", *id, img.X, img.Y)
	return savePNG(*out, img)
}

func runTree(args []string) error {
	s := newSession("tree")
	rt, res, err := s.open(args)
	if err != nil {
		return err
	}
	defer rt.Close()

	depth := 0
	for _, l := range res.Layers {
		if l.Type == psdrun.FlatGroupEnd {
			depth--
			continue
		}
		fmt.Printf("%s%d %q %s %s %dx%d+%d+%d opacity=%d visible=%v\n",
			strings.Repeat("  ", depth), l.ID, l.Name, l.ItemType, l.BlendMode,
			l.Width, l.Height, l.X, l.Y, l.Opacity, l.Visible)
		if l.Type == psdrun.FlatGroup {
			depth++
		}
	}
	return nil
}

func runHints(args []string) error {
	s := newSession("hints")
	set := s.fs.String("set", "", "hints JSON file to apply first")

	rt, res, err := s.open(args)
	if err != nil {
		return err
	}
	defer rt.Close()

	if *set != "" {
		data, err := os.ReadFile(*set)
		if err != nil {
			return err
		}
		n, err := rt.SetHints(res.Handle, data)
		if err != nil {
			return err
		}
		log.Printf("restored %d hints", n)
	}

	data, err := rt.Hints(res.Handle)
	if err != nil {
		return err
	}
	_, err = fmt.Println(string(data))
	return err
}

func runSetText(args []string) error {
	s := newSession("settext")
	out := s.fs.String("out", "render.png", "output PNG")
	id := s.fs.Int("id", 0, "text layer id")
	txt := s.fs.String("text", "", "replacement text")

	rt, res, err := s.open(args)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.SetLayerText(res.Handle, *id, *txt); err != nil {
		return err
	}
	img, err := rt.Render(res.Handle, nil, nil)
	if err != nil {
		return err
	}
	return savePNG(*out, img)
}

// runPack builds a document from PNG files, listed bottommost first.
func runPack(args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	out := fs.String("out", "doc.lyrd", "output LYRD document")
	codec := fs.String("codec", string(container.CodecZip), "block codec: raw, zip or j2k")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("pack: no input images")
	}

	doc := &psdrun.Document{}
	for i, path := range fs.Args() {
		img, err := loadPNG(path)
		if err != nil {
			return err
		}
		pixels := psdrun.PixmapFromImage(img)
		leaf := psdrun.NewLeaf(i+1, image.Rect(0, 0, pixels.Width(), pixels.Height()), pixels)
		leaf.Name = path
		doc.Layers = append([]*psdrun.Node{leaf}, doc.Layers...)
		doc.Width = max(doc.Width, pixels.Width())
		doc.Height = max(doc.Height, pixels.Height())
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := container.Encode(f, doc, &container.Options{Codec: container.Codec(*codec)}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func loadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

func savePNG(path string, img *psdrun.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img.NRGBA()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("saved %s (%dx%d)", path, img.Width, img.Height)
	return nil
}
