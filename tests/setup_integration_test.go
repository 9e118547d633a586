package tests

import (
	"os"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/catalog"
	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/repositories"
)

var (
	dbCtx *repositories.DbContext
	cat   *catalog.Catalog
)

func upEnvironment() {

	var err error
	cat, err = catalog.Load("configs/catalog.yaml")
	if err != nil {
		log.Fatalf("could not load catalog: %s", err)
	}

	dbCtx, err = repositories.NewDbContext("testdatabase.db")
	if err != nil {
		log.Fatalf("could not create db context: %s", err)
	}

	err = dbCtx.Migrate()
	if err != nil {
		log.Fatalf("could not migrate db: %s", err)
	}
}

func downEnvironment() {
	_ = dbCtx.Close()
	_ = os.Remove("testdatabase.db")
}

func clearDb() {
	dbCtx.DB.Exec("DELETE from vacancy_attribute_values WHERE TRUE")
	dbCtx.DB.Exec("DELETE from vacancy_data WHERE TRUE")
	dbCtx.DB.Exec("DELETE from vacancy_web WHERE TRUE")
	dbCtx.DB.Exec("DELETE from vacancies WHERE TRUE")
	dbCtx.DB.Exec("DELETE from statistic WHERE TRUE")
	dbCtx.DB.Exec("DELETE from service WHERE TRUE")
	dbCtx.DB.Exec("DELETE from raw_messages WHERE TRUE")
}

func TestMain(m *testing.M) {

	err := os.Chdir("../") //project root to resolve correctly relative paths in code
	if err != nil {
		log.Fatal(err)
	}

	upEnvironment()

	code := m.Run()

	downEnvironment()

	os.Exit(code)
}
