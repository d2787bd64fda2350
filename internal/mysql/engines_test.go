package mysql

import (
	"testing"

	"github.com/jasherai/mysqltuner/utils"
)

func TestAggregateEngines(t *testing.T) {
	tables := []TableInfo{
		{Engine: "InnoDB", DataLength: "1048576"},
		{Engine: "InnoDB", DataLength: "2097152"},
		{Engine: "MyISAM", DataLength: "524288"},
		{Engine: "MyISAM", DataLength: "not-a-number"},
		{Engine: "MEMORY", DataLength: "-100"},
		{Engine: "", DataLength: "999"},
	}

	usage := AggregateEngines(tables)

	if len(usage) != 3 {
		t.Fatalf("expected 3 engines, got %d: %v", len(usage), usage)
	}

	innodb := usage["InnoDB"]
	if innodb.Tables != 2 || innodb.DataBytes != 3*utils.MB {
		t.Errorf("InnoDB = %+v, want 2 tables / 3.0M", innodb)
	}

	// A junk size still counts the table, at zero bytes.
	myisam := usage["MyISAM"]
	if myisam.Tables != 2 || myisam.DataBytes != 512*utils.KB {
		t.Errorf("MyISAM = %+v, want 2 tables / 512.0K", myisam)
	}

	memory := usage["MEMORY"]
	if memory.Tables != 1 || memory.DataBytes != 0 {
		t.Errorf("MEMORY = %+v, want 1 table / 0B", memory)
	}
}

func TestAggregateEnginesEmpty(t *testing.T) {
	usage := AggregateEngines(nil)
	if len(usage) != 0 {
		t.Errorf("expected empty usage, got %v", usage)
	}
}

func TestConfigDSN(t *testing.T) {
	tcp := Config{Host: "db.example.com", Port: 3307, User: "tuner", Password: "s3cret"}
	if got, want := tcp.DSN(), "tuner:s3cret@tcp(db.example.com:3307)/information_schema"; got != want {
		t.Errorf("tcp DSN = %q, want %q", got, want)
	}

	sock := Config{Socket: "/var/run/mysqld/mysqld.sock", User: "root"}
	if got, want := sock.DSN(), "root:@unix(/var/run/mysqld/mysqld.sock)/information_schema"; got != want {
		t.Errorf("socket DSN = %q, want %q", got, want)
	}

	if got, want := sock.Addr(), "/var/run/mysqld/mysqld.sock"; got != want {
		t.Errorf("socket Addr = %q, want %q", got, want)
	}
}
