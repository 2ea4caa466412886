package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/arkhamdesk/sheetvault/internal/sheet/app"
	"github.com/arkhamdesk/sheetvault/internal/sheet/domain"
	"github.com/arkhamdesk/sheetvault/internal/sheet/store"
	"github.com/urfave/cli/v2"
)

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "create",
			Usage:     "create a new character sheet",
			ArgsUsage: "[field=value ...]",
			Action:    withApp(runCreate),
		},
		{
			Name:   "list",
			Usage:  "list all stored sheets",
			Action: withApp(runList),
		},
		{
			Name:      "show",
			Usage:     "print a sheet (defaults to the active one)",
			ArgsUsage: "[id]",
			Action:    withApp(runShow),
		},
		{
			Name:      "set",
			Usage:     "update fields on a sheet and save",
			ArgsUsage: "<id> <field=value ...>",
			Action:    withApp(runSet),
		},
		{
			Name:      "delete",
			Usage:     "delete a sheet",
			ArgsUsage: "<id>",
			Action:    withApp(runDelete),
		},
		{
			Name:      "export",
			Usage:     "export a sheet as pretty-printed JSON",
			ArgsUsage: "<id>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write to file instead of stdout"},
			},
			Action: withApp(runExport),
		},
		{
			Name:      "import",
			Usage:     "import a previously exported sheet under a new identity",
			ArgsUsage: "<file>",
			Action:    withApp(runImport),
		},
		{
			Name:   "active",
			Usage:  "print the id of the sheet currently being edited",
			Action: withApp(runActive),
		},
		{
			Name:      "edit",
			Usage:     "interactively edit a sheet with auto-save",
			ArgsUsage: "[id]",
			Action:    withApp(runEdit),
		},
	}
}

func runCreate(c *cli.Context, a *app.Application) error {
	var rec domain.CharacterRecord
	for _, arg := range c.Args().Slice() {
		field, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("expected field=value, got %q", arg)
		}
		if err := applyField(&rec, field, value); err != nil {
			return err
		}
	}

	id, err := a.Characters().Save(c.Context, rec)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func runList(c *cli.Context, a *app.Application) error {
	list, err := a.Characters().List(c.Context)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("no sheets stored")
		return nil
	}
	for _, s := range list {
		fmt.Printf("%s  %-28s  %s\n", s.ID, s.Name, s.Modified.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runShow(c *cli.Context, a *app.Application) error {
	id := c.Args().First()
	if id == "" {
		active, err := a.Characters().Active(c.Context)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no active sheet; pass an id")
			}
			return err
		}
		id = active
	}

	rec, err := a.Characters().Load(c.Context, id)
	if err != nil {
		return err
	}
	printSheet(rec)
	return nil
}

func runSet(c *cli.Context, a *app.Application) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: set <id> <field=value ...>")
	}
	id := c.Args().First()

	rec, err := a.Characters().Load(c.Context, id)
	if err != nil {
		return err
	}

	for _, arg := range c.Args().Tail() {
		field, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("expected field=value, got %q", arg)
		}
		if err := applyField(&rec, field, value); err != nil {
			return err
		}
	}

	if _, err := a.Characters().Save(c.Context, rec); err != nil {
		return err
	}
	fmt.Println("saved")
	return nil
}

func runDelete(c *cli.Context, a *app.Application) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("usage: delete <id>")
	}

	existed, err := a.Characters().Delete(c.Context, id)
	if err != nil {
		return err
	}
	if !existed {
		fmt.Println("no such sheet")
		return nil
	}
	fmt.Println("deleted")
	return nil
}

func runExport(c *cli.Context, a *app.Application) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("usage: export <id>")
	}

	text, err := a.Characters().Export(c.Context, id)
	if err != nil {
		return err
	}

	if out := c.String("out"); out != "" {
		return os.WriteFile(out, []byte(text+"\n"), 0o644)
	}
	fmt.Println(text)
	return nil
}

func runImport(c *cli.Context, a *app.Application) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("usage: import <file>")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	id, err := a.Characters().Import(c.Context, string(data))
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func runActive(c *cli.Context, a *app.Application) error {
	id, err := a.Characters().Active(c.Context)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fmt.Println("no active sheet")
			return nil
		}
		return err
	}
	fmt.Println(id)
	return nil
}

func printSheet(rec domain.CharacterRecord) {
	fmt.Printf("%s (%s)\n", rec.DisplayName(), rec.ID)
	if rec.Basic.Occupation != "" {
		fmt.Printf("  occupation: %s\n", rec.Basic.Occupation)
	}
	if rec.Basic.Age != nil {
		fmt.Printf("  age: %d\n", *rec.Basic.Age)
	}

	c := rec.Intermediate.Characteristics
	fmt.Printf("  STR %s  CON %s  SIZ %s  DEX %s  APP %s\n",
		optInt(c.STR), optInt(c.CON), optInt(c.SIZ), optInt(c.DEX), optInt(c.APP))
	fmt.Printf("  INT %s  POW %s  EDU %s  LUCK %s\n",
		optInt(c.INT), optInt(c.POW), optInt(c.EDU), optInt(c.LUCK))

	d := rec.Intermediate.Derived
	if d != (domain.Derived{}) {
		fmt.Printf("  HP %d  MP %d  SAN %s/%d  MOV %d  Build %d  DB %s\n",
			d.HP, d.MP, optInt(rec.Intermediate.SanCurrent), d.San, d.Mov, d.Build, d.DB)
	}

	if len(rec.Advanced.Gear) > 0 {
		fmt.Printf("  gear: %s\n", strings.Join(rec.Advanced.Gear, ", "))
	}
	fmt.Printf("  modified: %s\n", rec.Modified.Local().Format("2006-01-02 15:04:05"))
}

func optInt(p *int) string {
	if p == nil {
		return "--"
	}
	return fmt.Sprintf("%d", *p)
}
