package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/example/imgedit/internal/editor"
	"github.com/example/imgedit/internal/filters"
	"github.com/example/imgedit/internal/fonts"
	"github.com/example/imgedit/internal/geom"
)

// applyCmd runs the edit pipeline without a window.
type applyCmd struct {
	file          string
	output        string
	fromClipboard bool
	toClipboard   bool
	values        map[string]*float64
	rotate        int
	flip          string
	cropSpec      string
	texts         commandList
	style         fonts.Style
	*root
	fs *flag.FlagSet
}

func (a *applyCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func parseApplyCmd(args []string, r *root) (*applyCmd, error) {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	a := &applyCmd{root: r, fs: fs, values: map[string]*float64{}}
	fs.Usage = usageFunc(a)
	a.style = fonts.DefaultStyle()
	if r != nil && r.config != nil {
		a.style = r.config.Text
	}
	fs.StringVar(&a.file, "file", "", "input image file")
	fs.StringVar(&a.output, "output", "", "output file path (defaults to "+editor.ExportName+")")
	fs.BoolVar(&a.fromClipboard, "from-clipboard", false, "read the input image from the clipboard")
	fs.BoolVar(&a.fromClipboard, "from-clip", false, "read the input image from the clipboard (alias)")
	fs.BoolVar(&a.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	fs.BoolVar(&a.toClipboard, "to-clip", false, "copy the result to the clipboard (alias)")
	defaults := filters.Default()
	for _, name := range filters.Names {
		def, _ := defaults.Get(name)
		lim, _ := filters.LimitsOf(name)
		a.values[name] = fs.Float64(name, def, fmt.Sprintf("%s value (%g..%g)", name, lim.Min, lim.Max))
	}
	fs.IntVar(&a.rotate, "rotate", 0, "rotation in degrees, a multiple of 90")
	fs.StringVar(&a.flip, "flip", "", "mirror the image: h, v or hv")
	fs.StringVar(&a.cropSpec, "crop", "", "crop to x,y,w,h in pixels after the other edits")
	fs.Var(&a.texts, "text", "add text as content or content@x,y (may be repeated)")
	fs.StringVar(&a.style.Color, "text-color", a.style.Color, "text colour name or hex value")
	fs.Float64Var(&a.style.SizePx, "text-size", a.style.SizePx, "text size in pixels")
	fs.StringVar(&a.style.Family, "text-family", a.style.Family, "text family: "+strings.Join(fonts.Families, ", "))
	fs.StringVar(&a.style.Weight, "text-weight", a.style.Weight, "text weight: "+strings.Join(fonts.Weights, ", "))
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if a.file == "" && !a.fromClipboard {
		return nil, &UsageError{of: a}
	}
	if a.file != "" && a.fromClipboard {
		return nil, fmt.Errorf("-file and -from-clipboard cannot be combined")
	}
	if a.output == "" && !a.toClipboard {
		a.output = editor.ExportName
	}
	if _, err := fonts.ParseColor(a.style.Color); err != nil {
		return nil, fmt.Errorf("invalid -text-color: %w", err)
	}
	return a, nil
}

// parseRect reads "x,y,w,h".
func parseRect(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("crop expects x,y,w,h, got %q", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("invalid crop value %q: %w", p, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("crop width and height must be positive")
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

// parseTextSpec splits "content@x,y". Without a position the text is
// centred.
func parseTextSpec(s string) (string, *geom.Point, error) {
	i := strings.LastIndex(s, "@")
	if i < 0 {
		return s, nil, nil
	}
	xy := strings.Split(s[i+1:], ",")
	if len(xy) != 2 {
		return s, nil, nil
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(xy[0]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(xy[1]), 64)
	if err := errors.Join(errX, errY); err != nil {
		return "", nil, fmt.Errorf("invalid text position in %q: %w", s, err)
	}
	p := geom.Pt(x, y)
	return s[:i], &p, nil
}

// parseFlip accepts h, v, hv or vh.
func parseFlip(s string) (h, v bool, err error) {
	for _, c := range strings.ToLower(s) {
		switch c {
		case 'h':
			h = true
		case 'v':
			v = true
		default:
			return false, false, fmt.Errorf("invalid flip %q: use h, v or hv", s)
		}
	}
	return h, v, nil
}

// quarterTurns converts degrees into clockwise quarter turns.
func quarterTurns(deg int) (int, error) {
	if deg%90 != 0 {
		return 0, fmt.Errorf("rotation must be a multiple of 90, got %d", deg)
	}
	return ((deg/90)%4 + 4) % 4, nil
}

func (a *applyCmd) Run() error {
	flipH, flipV, err := parseFlip(a.flip)
	if err != nil {
		return err
	}
	turns, err := quarterTurns(a.rotate)
	if err != nil {
		return err
	}
	var cropRect image.Rectangle
	if a.cropSpec != "" {
		if cropRect, err = parseRect(a.cropSpec); err != nil {
			return err
		}
	}

	ed := a.newEditor()
	if a.fromClipboard {
		if _, err := ed.PasteFromClipboard(); err != nil {
			return err
		}
	} else if _, err := ed.Open(a.file); err != nil {
		return fmt.Errorf("open %s: %w", a.file, err)
	}

	stack := filters.Default()
	for name, v := range a.values {
		if err := stack.Set(name, *v); err != nil {
			return err
		}
	}
	ed.SetFilters(stack)
	for i := 0; i < turns; i++ {
		ed.RotateRight()
	}
	if flipH {
		ed.FlipHorizontal()
	}
	if flipV {
		ed.FlipVertical()
	}

	ed.Restyle(a.style)
	for _, spec := range a.texts {
		content, at, err := parseTextSpec(spec)
		if err != nil {
			return err
		}
		id, ok := ed.AddText(content)
		if !ok {
			return fmt.Errorf("text %q is empty", spec)
		}
		if at != nil {
			ed.PlaceText(id, *at)
		}
	}

	if !cropRect.Empty() {
		ed.StartCrop()
		ed.SetCropRegion(
			geom.Pt(float64(cropRect.Min.X), float64(cropRect.Min.Y)),
			geom.Pt(float64(cropRect.Max.X), float64(cropRect.Max.Y)),
		)
		ok, err := ed.ApplyCrop()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("crop %s: %w", a.cropSpec, editor.ErrNoImage)
		}
	}

	if a.toClipboard {
		if err := ed.CopyToClipboard(); err != nil {
			return err
		}
		fmt.Fprintln(a.errOut(), "Copied image to clipboard")
	}
	if a.output != "" {
		if err := ed.ExportPath(a.output); err != nil {
			return fmt.Errorf("save %s: %w", a.output, err)
		}
		fmt.Fprintf(a.errOut(), "Saved %s\n", a.output)
	}
	return nil
}
