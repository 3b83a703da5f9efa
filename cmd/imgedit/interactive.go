package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/example/imgedit/internal/crop"
	"github.com/example/imgedit/internal/editor"
	"github.com/example/imgedit/internal/filters"
	"github.com/example/imgedit/internal/fonts"
	"github.com/example/imgedit/internal/geom"
	"github.com/example/imgedit/internal/input"
)

const interactiveHelp = `commands:
  load <path>...            open images
  paste                     add the clipboard image
  list                      list images
  select <n|id>             select by position (1 based) or id
  next | prev               step through images
  remove [id]               drop an image (default current)
  state                     show the current image's edits
  filter [name value]       show or set a filter
  rotate left|right
  flip horizontal|vertical
  reset
  crop start | set x y w h | move dx dy | resize <corner> dx dy | apply | cancel
  text add <content> | list | move <id> x y | delete <id>
  text edit <id> | set <content> | done
  text style color|size|family|weight <value>
  export [path] | copy
  help | exit`

type interactiveCmd struct {
	r      *root
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newInteractiveCmd(r *root) *interactiveCmd {
	return &interactiveCmd{r: r, stdin: os.Stdin, stdout: r.out(), stderr: r.errOut()}
}

func (i *interactiveCmd) editor() *editor.Editor {
	if i.r.session == nil {
		i.r.session = i.r.newEditor()
	}
	return i.r.session
}

func (i *interactiveCmd) Run() error {
	_ = writeln(i.stdout, "Enter commands (type 'exit' to quit)")
	scanner := bufio.NewScanner(i.stdin)
	for {
		_ = writef(i.stdout, "> ")
		if !scanner.Scan() {
			break
		}
		done, err := i.executeLine(scanner.Text())
		if err != nil {
			_ = writeln(i.stderr, err.Error())
		}
		if done {
			break
		}
	}
	return scanner.Err()
}

// executeLine runs one command. done is set by exit.
func (i *interactiveCmd) executeLine(line string) (done bool, err error) {
	args, err := shellwords.Parse(line)
	if err != nil {
		return false, fmt.Errorf("parse %q: %w", line, err)
	}
	if len(args) == 0 {
		return false, nil
	}
	ed := i.editor()
	cmd, rest := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "exit", "quit":
		return true, nil
	case "help":
		return false, writeln(i.stdout, interactiveHelp)
	case "load":
		if len(rest) == 0 {
			return false, fmt.Errorf("load needs a path")
		}
		for _, p := range rest {
			e, err := ed.Open(p)
			if err != nil {
				return false, err
			}
			_ = writef(i.stdout, "loaded %s as %s\n", e.Name, e.ID)
		}
	case "paste":
		e, err := ed.PasteFromClipboard()
		if err != nil {
			return false, err
		}
		_ = writef(i.stdout, "pasted %s\n", e.ID)
	case "list":
		cur := ed.Current()
		for n, e := range ed.Store().Entries() {
			mark := " "
			if e == cur {
				mark = "*"
			}
			sz := e.Size()
			_ = writef(i.stdout, "%s %d %s %s %dx%d\n", mark, n+1, e.ID, e.Name, int(sz.W), int(sz.H))
		}
	case "select":
		if len(rest) != 1 {
			return false, fmt.Errorf("select needs an index or id")
		}
		if n, convErr := strconv.Atoi(rest[0]); convErr == nil {
			if n < 1 || n > ed.Store().Len() {
				return false, fmt.Errorf("no image %d", n)
			}
			ed.SelectIndex(n - 1)
		} else if err := ed.Select(rest[0]); err != nil {
			return false, err
		}
	case "next":
		ed.Next()
	case "prev":
		ed.Prev()
	case "remove":
		id := ""
		if len(rest) > 0 {
			id = rest[0]
		} else if cur := ed.Current(); cur != nil {
			id = cur.ID
		}
		if id == "" {
			return false, editor.ErrNoImage
		}
		return false, ed.Remove(id)
	case "state":
		return false, i.printState(ed)
	case "filter":
		return false, i.filter(ed, rest)
	case "rotate":
		switch argAt(rest, 0) {
		case "left":
			ed.RotateLeft()
		case "right":
			ed.RotateRight()
		default:
			return false, fmt.Errorf("rotate left or right")
		}
	case "flip":
		switch argAt(rest, 0) {
		case "horizontal", "h":
			ed.FlipHorizontal()
		case "vertical", "v":
			ed.FlipVertical()
		default:
			return false, fmt.Errorf("flip horizontal or vertical")
		}
	case "reset":
		ed.Reset()
	case "crop":
		return false, i.crop(ed, rest)
	case "text":
		return false, i.text(ed, rest)
	case "export":
		path := ""
		if len(rest) > 0 {
			path = rest[0]
		}
		if path == "" {
			dir := ""
			if i.r.config != nil {
				dir = i.r.config.SaveDir
			}
			path, err = ed.ExportFile(dir)
		} else {
			err = ed.ExportPath(path)
		}
		if err != nil {
			return false, err
		}
		_ = writef(i.stdout, "saved %s\n", path)
	case "copy":
		if err := ed.CopyToClipboard(); err != nil {
			return false, err
		}
		_ = writeln(i.stdout, "copied to clipboard")
	default:
		return false, fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return false, nil
}

func argAt(args []string, n int) string {
	if n < len(args) {
		return strings.ToLower(args[n])
	}
	return ""
}

func floats(args []string, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d numbers, got %d", n, len(args))
	}
	out := make([]float64, n)
	for k, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", a, err)
		}
		out[k] = v
	}
	return out, nil
}

func (i *interactiveCmd) printState(ed *editor.Editor) error {
	cur := ed.Current()
	if cur == nil {
		return editor.ErrNoImage
	}
	sz := cur.Size()
	filter := ed.Surface().Filter
	if filter == "" {
		filter = "none"
	}
	_ = writef(i.stdout, "%s %s %dx%d rotation=%d flipH=%t flipV=%t filter=%s texts=%d\n",
		cur.ID, cur.Name, int(sz.W), int(sz.H), cur.Rotation, cur.FlipH, cur.FlipV, filter, len(cur.Texts))
	if r, ok := ed.CropRegion(); ok {
		rect := r.Rect()
		_ = writef(i.stdout, "crop %g,%g %gx%g\n", rect.Min.X, rect.Min.Y, rect.Size.W, rect.Size.H)
	}
	return nil
}

func (i *interactiveCmd) filter(ed *editor.Editor, args []string) error {
	cur := ed.Current()
	if cur == nil {
		return editor.ErrNoImage
	}
	if len(args) == 0 {
		for _, name := range filters.Names {
			v, _ := cur.Filters.Get(name)
			_ = writef(i.stdout, "%s %g\n", name, v)
		}
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("filter <name> <value>")
	}
	v, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", args[1], err)
	}
	_, err = ed.SetFilter(args[0], v)
	return err
}

// drag replays a press-move-release at from and from+d through the crop
// session.
func drag(ed *editor.Editor, from, d geom.Point) bool {
	to := from.Add(d)
	down := ed.CropPointer(input.Pointer{X: from.X, Y: from.Y, Phase: input.Down})
	ed.CropPointer(input.Pointer{X: to.X, Y: to.Y, Phase: input.Move})
	ed.CropPointer(input.Pointer{X: to.X, Y: to.Y, Phase: input.Up})
	return down
}

func (i *interactiveCmd) crop(ed *editor.Editor, args []string) error {
	sub := argAt(args, 0)
	if sub != "start" && !ed.Cropping() {
		return fmt.Errorf("no crop in progress (crop start)")
	}
	switch sub {
	case "start":
		if !ed.StartCrop() {
			return editor.ErrNoImage
		}
	case "set":
		v, err := floats(args[1:], 4)
		if err != nil {
			return err
		}
		ed.SetCropRegion(geom.Pt(v[0], v[1]), geom.Pt(v[0]+v[2], v[1]+v[3]))
	case "move":
		v, err := floats(args[1:], 2)
		if err != nil {
			return err
		}
		r, _ := ed.CropRegion()
		rect := r.Rect()
		centre := rect.Min.Add(geom.Pt(rect.Size.W/2, rect.Size.H/2))
		drag(ed, centre, geom.Pt(v[0], v[1]))
	case "resize":
		h, ok := crop.ParseHandle(argAt(args, 1))
		if !ok || h == crop.NoHandle {
			return fmt.Errorf("corner must be top-left, top-right, bottom-left or bottom-right")
		}
		v, err := floats(args[2:], 2)
		if err != nil {
			return err
		}
		box := ed.CropHandle(h)
		drag(ed, box.Min.Add(geom.Pt(box.Size.W/2, box.Size.H/2)), geom.Pt(v[0], v[1]))
	case "apply":
		ok, err := ed.ApplyCrop()
		if err != nil {
			return err
		}
		if !ok {
			return editor.ErrNoImage
		}
	case "cancel":
		ed.CancelCrop()
	default:
		return fmt.Errorf("crop start|set|move|resize|apply|cancel")
	}
	return i.printState(ed)
}

func (i *interactiveCmd) text(ed *editor.Editor, args []string) error {
	if ed.Current() == nil {
		return editor.ErrNoImage
	}
	rest := []string{}
	if len(args) > 1 {
		rest = args[1:]
	}
	switch argAt(args, 0) {
	case "add":
		id, ok := ed.AddText(strings.Join(rest, " "))
		if !ok {
			return fmt.Errorf("text is empty")
		}
		_ = writef(i.stdout, "added %s\n", id)
	case "list":
		for _, t := range ed.Current().Texts {
			_ = writef(i.stdout, "%s %q at %g,%g %s %gpx %s %s\n", t.ID, t.Content,
				t.Position.X, t.Position.Y, t.Style.Color, t.Style.SizePx, t.Style.Family, t.Style.Weight)
		}
	case "move":
		if len(rest) != 3 {
			return fmt.Errorf("text move <id> x y")
		}
		v, err := floats(rest[1:], 2)
		if err != nil {
			return err
		}
		if !ed.PlaceText(rest[0], geom.Pt(v[0], v[1])) {
			return fmt.Errorf("no text %s", rest[0])
		}
	case "delete":
		if len(rest) != 1 || !ed.DeleteText(rest[0]) {
			return fmt.Errorf("no text %s", strings.Join(rest, " "))
		}
	case "edit":
		if len(rest) != 1 || !ed.EditText(rest[0]) {
			return fmt.Errorf("no text %s", strings.Join(rest, " "))
		}
	case "set":
		if !ed.SetTextContent(strings.Join(rest, " ")) {
			return fmt.Errorf("nothing to set: edit a text first and give non-blank content")
		}
	case "done":
		ed.BlurText()
	case "style":
		return i.textStyle(ed, rest)
	default:
		return fmt.Errorf("text add|list|move|delete|edit|set|done|style")
	}
	return nil
}

func (i *interactiveCmd) textStyle(ed *editor.Editor, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("text style <color|size|family|weight> <value>")
	}
	style := ed.TextStyle()
	for _, n := range ed.TextNodes() {
		if n.ID == ed.FocusedText() {
			style = n.Style
		}
	}
	val := args[1]
	switch argAt(args, 0) {
	case "color", "colour":
		if _, err := fonts.ParseColor(val); err != nil {
			return err
		}
		style.Color = val
	case "size":
		v, err := strconv.ParseFloat(val, 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("invalid size %q", val)
		}
		style.SizePx = v
	case "family":
		if !contains(fonts.Families, val) {
			return fmt.Errorf("family must be one of %s", strings.Join(fonts.Families, ", "))
		}
		style.Family = val
	case "weight":
		if !contains(fonts.Weights, val) {
			return fmt.Errorf("weight must be one of %s", strings.Join(fonts.Weights, ", "))
		}
		style.Weight = val
	default:
		return fmt.Errorf("unknown style property %q", args[0])
	}
	ed.Restyle(style)
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
