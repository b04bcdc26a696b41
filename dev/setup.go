package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	devenv "cams-catalog/dev/env"
	"cams-catalog/internal/catalogdb"
	"cams-catalog/internal/components/telemetry"
	configlibsql "cams-catalog/lib/configutil/libsql"
)

const portalConfigTemplate = `{
    // credentials used by the live portal test in internal/scrapers/cams
    base_url: "https://cams.floridapoly.org/student",
    username: "",
    password: "",
    // leave empty to use the latest term
    term: "",
}
`

func createPortalConfig() error {
	path, err := devenv.ResolvePath(filepath.Join("<dev_state>", "cams_config.json5"))
	if err != nil {
		return err
	}
	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("portal config already exists at", path)
		return nil
	}
	return os.WriteFile(path, []byte(portalConfigTemplate), 0600)
}

func createCatalogDb() error {
	db, err := configlibsql.Struct{File: filepath.Join("<dev_state>", "catalog.db")}.OpenDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	_, err = catalogdb.NewStore(ctx, db, telemetry.SlogAPI{})
	return err
}

func printConfigLocations() {
	root, err := devenv.GetWorkspaceRoot()
	if err != nil {
		return
	}
	fmt.Println("fill in your portal credentials at", filepath.Join(root, "dev", ".state", "cams_config.json5"))
	fmt.Println("a catalog database was created at", filepath.Join(root, "dev", ".state", "catalog.db"))
	fmt.Println("point cams-cli at it with `database: { file: \"<dev_state>/catalog.db\" }` in config.json5")
}
