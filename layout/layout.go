package layout

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Luismorlan/scrooge_in_go/utils"
	"github.com/jroimartin/gocui"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	historyView = "history"
	outputView  = "output"
	manualView  = "manual"
	inputView   = "input"
)

// Handler runs one line of input and prints what it has to say to out. It returns true once the
// user asked to leave.
type Handler func(line string, out io.Writer) (bool, error)

// History is the ViewManager that logs past commands.
type History struct {
	name string
}

// Output shows what commands print, and the process logs.
type Output struct {
	name string
}

type Manual struct {
	name string
	text string
}

// Input box for commands.
type Input struct {
	name   string
	g      *gocui.Gui
	handle Handler
}

func (h *History) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Bottom left corner.
	v, err := g.SetView(h.name, 1, maxY*2/3, maxX/3, maxY-6)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Title = "history"
	v.Autoscroll = true
	v.Wrap = true
	return nil
}

func (o *Output) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Right side.
	v, err := g.SetView(o.name, maxX/3+1, 1, maxX-1, maxY-6)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Autoscroll = true
	v.Wrap = true
	return nil
}

func (m *Manual) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Top left corner.
	v, err := g.SetView(m.name, 1, 1, maxX/3, maxY*2/3-1)
	switch {
	case err == gocui.ErrUnknownView:
		fmt.Fprintln(v, m.text)
	case err != nil:
		return err
	}
	v.Title = "usage"
	v.Wrap = true
	return nil
}

func (i *Input) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Bottom.
	v, err := g.SetView(i.name, 1, maxY-5, maxX-1, maxY-1)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Wrap = true
	v.Autoscroll = true
	v.Editor = i
	v.Editable = true
	return nil
}

func (i *Input) Edit(v *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) {
	switch {
	case key == gocui.KeyEnter:
		// Remove \n from string.
		s := strings.Replace(v.Buffer(), "\n", "", -1)
		// Both views exist once the first layout ran.
		history, _ := i.g.View(historyView)
		out, _ := i.g.View(outputView)
		if i.run(s, history, out) {
			i.g.Update(func(*gocui.Gui) error { return gocui.ErrQuit })
		}

		// Reset cursor.
		v.Clear()
		v.SetOrigin(0, 0)
		v.SetCursor(0, 0)

	case ch != 0 && mod == 0:
		v.EditWrite(ch)
	case key == gocui.KeySpace:
		v.EditWrite(' ')
	case key == gocui.KeyBackspace || key == gocui.KeyBackspace2:
		v.EditDelete(true)
	}
}

// run echoes line to history and hands it to the handler, whose errors go to out.
func (i *Input) run(line string, history, out io.Writer) bool {
	fmt.Fprintln(history, "> "+line)
	quit, err := i.handle(line, out)
	if err != nil {
		fmt.Fprintln(out, err)
	}
	return quit
}

// viewWriter appends to a view from any goroutine.
type viewWriter struct {
	g    *gocui.Gui
	name string
}

func (w *viewWriter) Write(p []byte) (int, error) {
	b := append([]byte(nil), p...)
	w.g.Update(func(g *gocui.Gui) error {
		if v, err := g.View(w.name); err == nil {
			v.Write(b)
		}
		return nil
	})
	return len(p), nil
}

func SetFocus(name string) func(g *gocui.Gui) error {
	return func(g *gocui.Gui) error {
		_, err := g.SetCurrentView(name)
		return err
	}
}

// CreateGui creates a GUI passing every entered line to handle, with usage shown aside.
func CreateGui(handle Handler, usage string) (*gocui.Gui, error) {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, err
	}
	g.Cursor = true

	input := &Input{name: inputView, g: g, handle: handle}
	focus := gocui.ManagerFunc(SetFocus(inputView))
	g.SetManager(&History{name: historyView}, input, &Output{name: outputView}, &Manual{name: manualView, text: usage}, focus)

	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

// Run shows the GUI until the user quits. Meanwhile the process logs go to the output view.
func Run(handle Handler, usage string) error {
	g, err := CreateGui(handle, usage)
	if err != nil {
		return errors.Wrap(err, "failed to create gui")
	}
	defer g.Close()

	utils.SetLogOutput(zerolog.ConsoleWriter{Out: &viewWriter{g: g, name: outputView}, NoColor: true, TimeFormat: time.Kitchen})
	defer utils.SetLogOutput(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}
