package main

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/asdine/storm/v3"
	"github.com/codestube/bot/internal/model"
	"github.com/codestube/bot/pkg/stormcodec"
	"github.com/codestube/bot/pkg/stormsql"
	"github.com/codestube/bot/pkg/structs"
	"github.com/muesli/coral"
	"github.com/pkg/errors"
)

// go run tools/console/main.go todobot.db " SELECT Name, Due FROM todos WHERE UserID = '131614435067297792' AND CreatedAt > '2024-02-16 20:52:55' ORDER BY CreatedAt;  "

var codecName string

func main() {
	c := &coral.Command{
		Use:   "console",
		Short: "Read-only SQL console for todobot storm database",
		Args:  coral.ExactArgs(2),
		RunE: func(_ *coral.Command, args []string) error {
			sc, err := stormsql.ParseSelect(args[1])
			if err != nil {
				return err
			}
			if sc.Tablename != "todos" {
				return errors.Errorf("unknown tablename: %s", sc.Tablename)
			}

			codec, err := stormcodec.ByName(codecName)
			if err != nil {
				return err
			}

			fmt.Println("Opening", args[0])
			db, err := storm.Open(args[0], storm.Codec(codec))
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			//
			// Prepare request
			//

			query := db.Select(sc.Matcher)
			if sc.Skip > 0 {
				query.Skip(sc.Skip)
			}
			if sc.Limit > 0 {
				query.Limit(sc.Limit)
			}
			if len(sc.OrderBy) > 0 {
				query.OrderBy(sc.OrderBy...)
				if sc.OrderByReversed {
					query.Reverse()
				}
			}

			// Execute

			if sc.Count {
				return count(query)
			}

			return list(sc, query)
		},
	}
	c.Flags().StringVar(&codecName, "codec", stormcodec.Default, "Storm codec of the database")

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func count(query storm.Query) error {
	n, err := query.Count(&model.Todo{})
	if err != nil && err != storm.ErrNotFound {
		return errors.Wrap(err, "could not perform query")
	}

	fmt.Println("Count:", n)
	return nil
}

func list(sc *stormsql.SelectClause, query storm.Query) error {
	var todos []*model.Todo
	err := query.Find(&todos)
	if err == storm.ErrNotFound {
		fmt.Println("[]")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "could not perform query")
	}

	if len(sc.SelectedFields) == 0 {
		return jsondump(todos)
	}

	rows := make([]map[string]any, 0, len(todos))
	for _, todo := range todos {
		row, err := structs.Project(todo, sc.SelectedFields...)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return jsondump(rows)
}

func jsondump(v any) error {
	d, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not encode result")
	}
	fmt.Println(string(d))
	return nil
}
