// Package cli runs the manager's node operations from the terminal without
// starting the GUI.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/atotto/clipboard"

	"overtls-manager/core"
	"overtls-manager/internal/overtls"
)

// Overridden in tests.
var (
	clipWrite = clipboard.WriteAll
	clipRead  = clipboard.ReadAll
)

// Options are the command line requests. Node numbers are 1-based, as
// printed by -list; 0 means "not requested".
type Options struct {
	List   bool
	URL    int
	Copy   bool
	Export int
	Output string
	Import string
	Paste  bool
	Run    int
}

// Requested reports whether any headless operation was asked for.
func (o Options) Requested() bool {
	return o.List || o.URL > 0 || o.Export > 0 || o.Import != "" || o.Paste || o.Run > 0
}

// CLI executes Options against a headless controller.
type CLI struct {
	ac  *core.AppController
	out io.Writer
}

// New creates a CLI writing its output to out.
func New(ac *core.AppController, out io.Writer) *CLI {
	return &CLI{ac: ac, out: out}
}

// Execute runs every requested operation in a fixed order: import, paste,
// list, url, export, run.
func (c *CLI) Execute(ctx context.Context, o Options) error {
	if o.Export > 0 && o.Output == "" {
		return errors.New("-export needs -o FILE")
	}
	if o.Import != "" {
		if err := c.Import(o.Import); err != nil {
			return err
		}
	}
	if o.Paste {
		if err := c.Paste(); err != nil {
			return err
		}
	}
	if o.List {
		c.ListNodes()
	}
	if o.URL > 0 {
		if err := c.PrintURL(o.URL, o.Copy); err != nil {
			return err
		}
	}
	if o.Export > 0 {
		if err := c.Export(o.Export, o.Output); err != nil {
			return err
		}
	}
	if o.Run > 0 {
		return c.Run(ctx, o.Run)
	}
	return nil
}

func (c *CLI) node(number int) (int, overtls.Config, error) {
	i := number - 1
	node, err := c.ac.Nodes.Get(i)
	if err != nil {
		return 0, overtls.Config{}, fmt.Errorf("node %d: %w", number, err)
	}
	return i, node, nil
}

// ListNodes prints the node table.
func (c *CLI) ListNodes() {
	if c.ac.Nodes.Len() == 0 {
		fmt.Fprintln(c.out, "No nodes configured.")
		fmt.Fprintln(c.out, "Import one with -import FILE or -paste.")
		return
	}
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tREMARKS\tSERVER\tPORT\tTUNNEL PATH")
	fmt.Fprintln(w, "-\t-------\t------\t----\t-----------")
	for i, node := range c.ac.Nodes.Snapshot() {
		host, port := "", ""
		if node.Client != nil {
			host = node.Client.ServerHost
			if node.Client.ServerPort != 0 {
				port = strconv.Itoa(int(node.Client.ServerPort))
			}
		}
		marker := strconv.Itoa(i + 1)
		if c.ac.Selected != nil && *c.ac.Selected == i {
			marker += "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", marker, node.Remarks, host, port, node.TunnelPath)
	}
	w.Flush()
}

// PrintURL prints the ssr:// link of a node, copying it when asked.
func (c *CLI) PrintURL(number int, copyToClipboard bool) error {
	_, node, err := c.node(number)
	if err != nil {
		return err
	}
	link, err := overtls.GenerateSSRURL(node)
	if err != nil {
		return fmt.Errorf("node %d: %w", number, err)
	}
	fmt.Fprintln(c.out, link)
	if copyToClipboard {
		if err := clipWrite(link); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
	}
	return nil
}

// Export writes a node to path.
func (c *CLI) Export(number int, path string) error {
	i, _, err := c.node(number)
	if err != nil {
		return err
	}
	if err := c.ac.Select(i); err != nil {
		return err
	}
	if err := c.ac.ExportSelected(path); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Node %d written to %s\n", number, path)
	return c.ac.SaveState()
}

// Import adds the node held in path and saves the state.
func (c *CLI) Import(path string) error {
	i, err := c.ac.ImportFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Imported node %d from %s\n", i+1, path)
	return c.ac.SaveState()
}

// Paste adds the node held in the clipboard and saves the state.
func (c *CLI) Paste() error {
	text, err := clipRead()
	if err != nil {
		return fmt.Errorf("read clipboard: %w", err)
	}
	i, err := c.ac.Paste(text)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Imported node %d from the clipboard\n", i+1)
	return c.ac.SaveState()
}

// Run starts a node and blocks until ctx is cancelled or the session ends.
func (c *CLI) Run(ctx context.Context, number int) error {
	i, node, err := c.node(number)
	if err != nil {
		return err
	}
	if err := c.ac.RunNode(i); err != nil {
		return err
	}
	s := c.ac.Runner.Current()
	settings := c.ac.State.SystemSettings
	fmt.Fprintf(c.out, "Running '%s', SOCKS5 on %s:%d. Press Ctrl+C to stop.\n", node.Title(), settings.ListenHost, settings.ListenPort)

	select {
	case <-s.Done():
		return s.Err()
	case <-ctx.Done():
	}
	err = c.ac.Runner.Stop()
	if errors.Is(err, core.ErrNoSession) {
		return s.Err()
	}
	return err
}

// PrintHelp writes the command line usage.
func PrintHelp(w io.Writer) {
	fmt.Fprintln(w, `Usage: overtls-manager [options]

Without options the GUI starts.

Options:
  -list            List nodes
  -url N           Print the ssr:// link of node N
  -copy            With -url, also copy the link to the clipboard
  -export N -o F   Write node N to file F (.json, .yaml or .yml)
  -import F        Import a node from a config file, QR image or URL text file
  -paste           Import a node from the clipboard (JSON or URL)
  -run N           Run node N until interrupted
  -config DIR      Use DIR instead of the user config directory
  -version         Print the version`)
}
