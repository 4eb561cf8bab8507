package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"mealcheck/pkg/collection"
	"mealcheck/pkg/config"

	log "github.com/sirupsen/logrus"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose logging")
	configFile := flag.String("config", "", "Optional TOML config file")
	list := flag.Bool("list", false, "List the sheets in the spreadsheet")
	sheet := flag.String("sheet", "", "Sheet (class) to search")
	roll := flag.String("roll", "", "Last 3 digits of the roll number")
	collect := flag.Bool("collect", false, "Mark the student found by -roll as collected")

	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	cfg, err := config.New(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	svc := collection.NewService(collection.Connect(cfg.Credentials()))

	if *list {
		for _, name := range svc.ListSheets(ctx) {
			fmt.Println(name)
		}
		return
	}

	if *sheet == "" || *roll == "" {
		log.Error("You must specify -list, or -sheet and -roll")
		flag.Usage()
		os.Exit(1)
	}

	record, err := svc.Lookup(ctx, *sheet, strings.TrimSpace(*roll))
	if err != nil {
		log.Fatal(err)
	}
	printRecord(*record)

	if !*collect {
		return
	}
	if record.IsCollected() {
		log.Warnf("%s already collected at %s, overwriting", record.Name, record.Status)
	}

	timestamp, err := svc.MarkCollected(ctx, *sheet, record.RowPosition, record.StatusColumn)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println()
	printRecord(record.WithStatus(timestamp))
}

func printRecord(r collection.StudentRecord) {
	preference := "Non-Veg"
	if r.IsVeg() {
		preference = "Veg"
	}

	fmt.Printf("Name:       %s\n", r.Name)
	fmt.Printf("Roll:       %s\n", r.Roll)
	fmt.Printf("Preference: %s (%s)\n", preference, r.Preference)
	fmt.Printf("Status:     %s\n", r.Status)
	fmt.Printf("Cell:       %s%d\n", r.StatusColumn, r.RowPosition)
}
