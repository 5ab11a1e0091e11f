package main

import (
	"context"
	"fmt"
	"log"

	"github.com/codestube/bot/internal/database"
	"github.com/muesli/coral"
	"github.com/pkg/errors"
)

// go run tools/rmuser/main.go --path . 131614435067297792
// go run tools/rmuser/main.go --driver postgres --url postgres://localhost/todobot 131614435067297792

func main() {
	var opts database.Options

	c := &coral.Command{
		Use:   "rmuser <user-id>",
		Short: "Remove every to-do of a user, in all guilds",
		Args:  coral.ExactArgs(1),
		RunE: func(_ *coral.Command, args []string) error {
			userID := args[0]

			fmt.Printf("Opening %s database\n", opts.Driver)
			db, err := database.Open(opts)
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			n, err := db.DeleteTodosByOwner(context.Background(), userID, "")
			if err != nil {
				return errors.Wrap(err, "delete todos")
			}

			if n == 0 {
				fmt.Println("No to-do for this user")
				return nil
			}
			fmt.Printf("%d to-do item(s) removed\n", n)
			return nil
		},
	}
	c.Flags().StringVar(&opts.Driver, "driver", database.DriverStorm, "Database driver (storm or postgres)")
	c.Flags().StringVar(&opts.Path, "path", "", "Directory of the storm file")
	c.Flags().StringVar(&opts.Codec, "codec", "", "Storm codec")
	c.Flags().StringVar(&opts.URL, "url", "", "Postgres URL")

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}
