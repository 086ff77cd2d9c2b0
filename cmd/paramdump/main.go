// Package main provides a command-line utility to dump a regulation
// archive's embedded PARAM entries and, when a Paramdex bundle is given,
// decode a chosen param's rows against it.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/scigolib/paramdex"
)

func main() {
	game := flag.String("game", "ER", "regulation cipher profile: DS2, DS3, or ER")
	paramdexDir := flag.String("paramdex", "", "path to a Paramdex directory (Defs/, Meta/, Names/)")
	paramType := flag.String("param", "", "paramdef name to decode rows for (requires -paramdex)")
	version := flag.Int("version", 0, "paramdef patch version to decode against")
	rowLimit := flag.Int("rows", 10, "maximum number of decoded rows to print")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: paramdump [flags] <regulation.bin>")
		fmt.Println("Flags:")
		flag.PrintDefaults()
		return
	}

	g, err := parseGame(*game)
	if err != nil {
		log.Fatalf("Invalid -game: %v", err)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatalf("Failed to read regulation: %v", err)
	}

	reg, err := paramdex.Open(g, data)
	if err != nil {
		log.Fatalf("Failed to open regulation: %v", err)
	}

	names := reg.Files()
	fmt.Printf("%d embedded files:\n", len(names))
	for _, n := range names {
		fmt.Printf("  %s\n", n)
	}

	if *paramType == "" {
		return
	}
	if *paramdexDir == "" {
		log.Fatalf("-param requires -paramdex")
	}

	px, err := paramdex.Load(*paramdexDir)
	if err != nil {
		log.Fatalf("Failed to load paramdex: %v", err)
	}
	for _, e := range px.Errors() {
		log.Printf("paramdex warning: %v", e)
	}

	table, err := reg.Param(*paramType)
	if err != nil {
		log.Fatalf("Failed to read param %q: %v", *paramType, err)
	}

	decoded, err := px.Decode(*paramType, *version, table)
	if err != nil {
		log.Fatalf("Failed to decode param %q: %v", *paramType, err)
	}

	fmt.Printf("\n%s: %d rows\n", decoded.ParamType, len(decoded.Rows))
	for i, row := range decoded.Rows {
		if i >= *rowLimit {
			fmt.Printf("... %d more rows omitted\n", len(decoded.Rows)-*rowLimit)
			break
		}
		name, _ := px.RowName(*paramType, row.ID, row.Name)
		fmt.Printf("[%d] %s\n", row.ID, name)
		for _, f := range row.Fields {
			if f.EnumLabel != "" {
				fmt.Printf("    %s = %v (%s)\n", f.Name, f.Value, f.EnumLabel)
			} else {
				fmt.Printf("    %s = %v\n", f.Name, f.Value)
			}
		}
	}
}

func parseGame(s string) (paramdex.Game, error) {
	switch strings.ToUpper(s) {
	case "DS2":
		return paramdex.DS2, nil
	case "DS3":
		return paramdex.DS3, nil
	case "ER":
		return paramdex.ER, nil
	default:
		return 0, fmt.Errorf("unrecognized game %q, want DS2, DS3, or ER", s)
	}
}
