package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/hupe1980/assetpipe/internal/filter"
	"github.com/hupe1980/assetpipe/internal/pipeline"
)

// editSet runs a line-based editing session over the configuration set
// before the batch run starts. It returns true when the session ends with
// a run request; "quit" aborts without running. End of input counts as a
// run request so piped scripts behave like their last command was "run".
func editSet(in io.Reader, out io.Writer, set *pipeline.Set, reg *filter.Registry) (bool, error) {
	fmt.Fprintln(out, `interactive mode: edit the configuration set, then "run" (or "help")`)
	printSet(out, set)

	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "> ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return false, fmt.Errorf("reading command: %w", err)
			}

			fmt.Fprintln(out)

			return true, nil
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "run":
			return true, nil

		case "quit", "q":
			return false, nil

		case "help", "?":
			printEditorHelp(out)

		case "list", "ls":
			printSet(out, set)

		case "show":
			name := set.ActiveName()
			if len(args) > 0 {
				name = args[0]
			}

			if err := printConfiguration(out, set, name); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}

		default:
			if err := applyEdit(set, reg, cmd, args); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		}
	}
}

// applyEdit dispatches the mutating editor commands.
func applyEdit(set *pipeline.Set, reg *filter.Registry, cmd string, args []string) error {
	switch cmd {
	case "active":
		if len(args) != 1 {
			return fmt.Errorf("usage: active <name>")
		}

		return set.SetActive(args[0])

	case "copy":
		if len(args) != 2 {
			return fmt.Errorf("usage: copy <source> <new-name>")
		}

		src, ok := set.Get(args[0])
		if !ok {
			return fmt.Errorf("configuration %q not found", args[0])
		}

		return set.Add(src.Copy(args[1]))

	case "rename":
		if len(args) != 2 {
			return fmt.Errorf("usage: rename <old> <new>")
		}

		return set.Rename(args[0], args[1])

	case "remove", "rm":
		if len(args) != 1 {
			return fmt.Errorf("usage: remove <name>")
		}

		return set.Remove(args[0])

	case "add":
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("usage: add <filter-id> [configuration]")
		}

		cfg, err := editTarget(set, args, 1)
		if err != nil {
			return err
		}

		inst, err := reg.New(args[0])
		if err != nil {
			return err
		}

		cfg.AddFilter(cfg.Len()-1, inst)

		return nil

	case "drop":
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("usage: drop <index> [configuration]")
		}

		cfg, err := editTarget(set, args, 1)
		if err != nil {
			return err
		}

		i, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("index %q is not a number", args[0])
		}

		return cfg.RemoveFilter(i)

	case "move":
		if len(args) < 2 || len(args) > 3 {
			return fmt.Errorf("usage: move <index> up|down [configuration]")
		}

		cfg, err := editTarget(set, args, 2)
		if err != nil {
			return err
		}

		i, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("index %q is not a number", args[0])
		}

		var dir pipeline.Direction

		switch args[1] {
		case "up":
			dir = pipeline.MoveUp
		case "down":
			dir = pipeline.MoveDown
		default:
			return fmt.Errorf("direction must be up or down, got %q", args[1])
		}

		return cfg.MoveFilter(i, dir)

	case "set":
		if len(args) < 3 || len(args) > 4 {
			return fmt.Errorf("usage: set <index> <option> <value> [configuration]")
		}

		cfg, err := editTarget(set, args, 3)
		if err != nil {
			return err
		}

		i, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("index %q is not a number", args[0])
		}

		inst, err := cfg.FilterAt(i)
		if err != nil {
			return err
		}

		value, err := coerceOption(inst, args[1], args[2])
		if err != nil {
			return err
		}

		return inst.SetOption(args[1], value)

	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

// editTarget resolves the optional trailing configuration-name argument,
// defaulting to the active configuration.
func editTarget(set *pipeline.Set, args []string, nameIndex int) (*pipeline.Configuration, error) {
	if len(args) <= nameIndex {
		return set.Active(), nil
	}

	cfg, ok := set.Get(args[nameIndex])
	if !ok {
		return nil, fmt.Errorf("configuration %q not found", args[nameIndex])
	}

	return cfg, nil
}

// coerceOption converts the raw token to the declared option type so the
// bound value round-trips through the settings codec unchanged.
func coerceOption(inst *filter.Instance, name, raw string) (interface{}, error) {
	for _, spec := range inst.Filter.Descriptor().Options {
		if spec.Name != name {
			continue
		}

		switch spec.Type {
		case filter.OptionInt:
			return cast.ToIntE(raw)
		case filter.OptionFloat:
			return cast.ToFloat64E(raw)
		case filter.OptionBool:
			return cast.ToBoolE(raw)
		default:
			return raw, nil
		}
	}

	return nil, fmt.Errorf("filter %s has no option %q", inst.ID(), name)
}

func printSet(out io.Writer, set *pipeline.Set) {
	for _, cfg := range set.All() {
		marker := " "
		if cfg.Name() == set.ActiveName() {
			marker = "*"
		}

		fmt.Fprintf(out, "%s %s (%d filters, %s)\n", marker, cfg.Name(), cfg.Len(), cfg.Status())
	}
}

func printConfiguration(out io.Writer, set *pipeline.Set, name string) error {
	cfg, ok := set.Get(name)
	if !ok {
		return fmt.Errorf("configuration %q not found", name)
	}

	fmt.Fprintf(out, "%s:\n", cfg.Name())

	for i, inst := range cfg.Filters() {
		fmt.Fprintf(out, "  [%d] %s", i, inst.ID())

		for _, spec := range inst.Filter.Descriptor().Options {
			if v, ok := inst.Options[spec.Name]; ok {
				fmt.Fprintf(out, " %s=%v", spec.Name, v)
			}
		}

		fmt.Fprintln(out)
	}

	return nil
}

func printEditorHelp(out io.Writer) {
	fmt.Fprint(out, `commands:
  list                                 list configurations (* marks active)
  show [config]                        list a configuration's filters
  active <name>                        select the active configuration
  copy <source> <new-name>             duplicate a configuration
  rename <old> <new>                   rename a configuration
  remove <name>                        delete a configuration
  add <filter-id> [config]             append a filter
  drop <index> [config]                remove a filter
  move <index> up|down [config]        reorder a filter
  set <index> <option> <value> [config]  bind an option value
  run                                  finish editing and run
  quit                                 abort without running
`)
}
