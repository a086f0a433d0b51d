// Migration script: brings the configured database up to date and
// optionally seeds the settings table.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"hackdash/config"
	"hackdash/dao/query"
	"hackdash/logutils"
	"hackdash/settings"
)

func main() {
	admins := flag.String("admins", "", "comma separated emails to put on the admin and allow lists")
	editing := flag.Bool("editing", false, "allow project editing")
	directory := flag.Bool("directory", false, "enable the project directory")
	seed := flag.Bool("seed", false, "write the settings given by -admins, -editing and -directory")
	flag.Parse()

	cfg := config.GetConfig()
	db, err := query.InitDB(cfg)
	if err != nil {
		fmt.Println("err init:", err)
		os.Exit(1)
	}
	if err := query.Migrate(db); err != nil {
		logutils.Log.Fatal("migrate: ", err)
	}
	logutils.Log.Info("migration did run successfully")

	if !*seed {
		return
	}
	ctx := context.Background()
	st := settings.New(db)
	if err := st.SetEditingAllowed(ctx, *editing); err != nil {
		logutils.Log.Fatal(err)
	}
	if err := st.SetDirectoryEnabled(ctx, *directory); err != nil {
		logutils.Log.Fatal(err)
	}
	if *admins != "" {
		emails := settings.NormalizeEmails(strings.Split(*admins, ","))
		if err := st.SetAdminUsers(ctx, emails); err != nil {
			logutils.Log.Fatal(err)
		}
		allowed, err := st.AllowedUsers(ctx)
		if err != nil {
			logutils.Log.Fatal(err)
		}
		if err := st.SetAllowedUsers(ctx, append(allowed, emails...)); err != nil {
			logutils.Log.Fatal(err)
		}
	}
	logutils.Log.Info("settings seeded")
}
