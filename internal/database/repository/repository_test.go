package repository_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/oplab/lab400/internal/database"
	"github.com/oplab/lab400/internal/database/repository"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestUserProfileLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := repository.NewUserRepo(db)

	err := users.Create(ctx, repository.UserProfile{
		Username: "alice", PasswordHash: "h", Salt: "s", UserClass: "*PGMR",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Lookup is case-insensitive; names are stored upper-cased.
	u, err := users.Get(ctx, "Alice")
	if err != nil || u == nil {
		t.Fatalf("get: %v %v", u, err)
	}
	if u.Username != "ALICE" || u.Status != "*ENABLED" {
		t.Fatalf("profile = %+v", u)
	}

	if err := users.RecordFailedSignon(ctx, "ALICE"); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	u, _ = users.Get(ctx, "ALICE")
	if u.SignonAttempts != 1 {
		t.Fatalf("attempts = %d, want 1", u.SignonAttempts)
	}

	if err := users.RecordSignon(ctx, "ALICE"); err != nil {
		t.Fatalf("record signon: %v", err)
	}
	u, _ = users.Get(ctx, "ALICE")
	if u.SignonAttempts != 0 || u.LastSignon == nil {
		t.Fatalf("after signon = %+v", u)
	}

	if err := users.SetStatus(ctx, "ALICE", "*DISABLED"); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := users.Delete(ctx, "ALICE"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if u, _ := users.Get(ctx, "ALICE"); u != nil {
		t.Fatal("profile survived delete")
	}
}

func TestCommandTableFilterAndParameters(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	if err := database.SeedDefaults(ctx, db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	commands := repository.NewCommandRepo(db)

	all, err := commands.List(ctx, "")
	if err != nil || len(all) == 0 {
		t.Fatalf("list: %d entries, err %v", len(all), err)
	}

	filtered, err := commands.List(ctx, "SYSVAL")
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "WRKSYSVAL" {
		t.Fatalf("filtered = %+v", filtered)
	}

	parms, err := commands.Parameters(ctx, "SBMJOB")
	if err != nil {
		t.Fatalf("parameters: %v", err)
	}
	if len(parms) != 3 || parms[0].Name != "TASK" || parms[2].Name != "DELAY" {
		t.Fatalf("parms = %+v", parms)
	}

	values, err := commands.ValidValues(ctx, "SBMJOB", "JOBQ")
	if err != nil {
		t.Fatalf("valid values: %v", err)
	}
	if len(values) != 3 || values[0].Value != "QBATCH" {
		t.Fatalf("values = %+v", values)
	}
}

func TestMessageQueueSendAndClear(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	messages := repository.NewMessageRepo(db)

	if err := messages.CreateQueue(ctx, repository.MessageQueue{Name: "OPS", Library: "QGPL"}); err != nil {
		t.Fatalf("create queue: %v", err)
	}
	for _, text := range []string{"first", "second"} {
		err := messages.Send(ctx, repository.Message{
			Queue: "OPS", Library: "QGPL", Text: text, Sender: "QSYSOPR",
		})
		if err != nil {
			t.Fatalf("send %q: %v", text, err)
		}
	}

	got, err := messages.Messages(ctx, "OPS", "QGPL", 10)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d messages, want 2", len(got))
	}

	if err := messages.ClearQueue(ctx, "OPS", "QGPL"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ = messages.Messages(ctx, "OPS", "QGPL", 10)
	if len(got) != 0 {
		t.Fatalf("queue not cleared: %d left", len(got))
	}
}

func TestSpooledFileUserScope(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	spool := repository.NewSpoolRepo(db)

	for _, user := range []string{"QUSER", "QUSER", "QSYSOPR"} {
		_, err := spool.CreateSpooledFile(ctx, repository.SpooledFile{
			Name: "QPJOBLOG", Username: user, Content: "log",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	mine, err := spool.ListSpooledFiles(ctx, "QUSER")
	if err != nil || len(mine) != 2 {
		t.Fatalf("scoped list = %d (err %v), want 2", len(mine), err)
	}
	all, err := spool.ListSpooledFiles(ctx, "")
	if err != nil || len(all) != 3 {
		t.Fatalf("full list = %d (err %v), want 3", len(all), err)
	}

	if err := spool.SetSpooledFileStatus(ctx, mine[0].ID, "HLD"); err != nil {
		t.Fatalf("hold: %v", err)
	}
	f, err := spool.GetSpooledFile(ctx, mine[0].ID)
	if err != nil || f == nil || f.Status != "HLD" {
		t.Fatalf("after hold = %+v (err %v)", f, err)
	}

	if err := spool.DeleteSpooledFile(ctx, mine[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if f, _ := spool.GetSpooledFile(ctx, mine[0].ID); f != nil {
		t.Fatal("file survived delete")
	}
}

func TestScheduleEntryStatusAndRun(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	schedule := repository.NewScheduleRepo(db)

	err := schedule.Add(ctx, repository.ScheduleEntry{
		Name: "backup", Command: "SBMJOB lab400:ping", Schedule: "0 3 * * *",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	e, err := schedule.Get(ctx, "BACKUP")
	if err != nil || e == nil {
		t.Fatalf("get: %v %v", e, err)
	}
	if e.Status != "*SCD" || e.LastRun != nil {
		t.Fatalf("new entry = %+v", e)
	}

	if err := schedule.SetStatus(ctx, "BACKUP", "*HLD"); err != nil {
		t.Fatalf("hold: %v", err)
	}
	if err := schedule.RecordRun(ctx, "BACKUP"); err != nil {
		t.Fatalf("record run: %v", err)
	}
	e, _ = schedule.Get(ctx, "BACKUP")
	if e.Status != "*HLD" || e.LastRun == nil {
		t.Fatalf("after run = %+v", e)
	}

	if err := schedule.Remove(ctx, "BACKUP"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if e, _ := schedule.Get(ctx, "BACKUP"); e != nil {
		t.Fatal("entry survived remove")
	}
}

func TestSystemValueUpsert(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	sysvals := repository.NewSystemValueRepo(db)

	if v, err := sysvals.Get(ctx, "QNTPSTS"); err != nil || v != nil {
		t.Fatalf("missing value = %v (err %v)", v, err)
	}
	if err := sysvals.Set(ctx, "QNTPSTS", "OK", "QNTPSYNC"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := sysvals.Set(ctx, "QNTPSTS", "FAILED", "QNTPSYNC"); err != nil {
		t.Fatalf("update: %v", err)
	}
	v, err := sysvals.Get(ctx, "QNTPSTS")
	if err != nil || v == nil {
		t.Fatalf("get: %v %v", v, err)
	}
	if v.Value != "FAILED" || v.UpdatedBy != "QNTPSYNC" {
		t.Fatalf("value = %+v", v)
	}
}

func TestHistoryRecentOrder(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	history := repository.NewHistoryRepo(db)

	for _, msg := range []string{"one", "two", "three"} {
		if err := history.Append(ctx, repository.HistoryEntry{Message: msg, Username: "QSYS"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := history.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Message != "three" || entries[1].Message != "two" {
		t.Fatalf("order = %q, %q", entries[0].Message, entries[1].Message)
	}
	if entries[0].Type != "*INFO" {
		t.Fatalf("default type = %q", entries[0].Type)
	}
}

func TestNotificationLastSuccess(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	sent := repository.NewNotificationRepo(db)

	last, err := sent.LastSuccess(ctx, "abc123")
	if err != nil || last != nil {
		t.Fatalf("unseen fingerprint = %v (err %v)", last, err)
	}

	if err := sent.Record(ctx, "abc123", "telegram", "down", false); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if last, _ := sent.LastSuccess(ctx, "abc123"); last != nil {
		t.Fatal("failed send counted as success")
	}

	if err := sent.Record(ctx, "abc123", "telegram", "down", true); err != nil {
		t.Fatalf("record success: %v", err)
	}
	last, err = sent.LastSuccess(ctx, "abc123")
	if err != nil || last == nil {
		t.Fatalf("last success = %v (err %v)", last, err)
	}
}

func TestSubsystemCreateWithQueues(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := repository.NewSubsystemRepo(db)

	err := repo.Create(ctx, repository.Subsystem{
		Name:        "QTEST",
		Description: "Test subsystem",
		Queues: []repository.SubsystemQueue{
			{JobQueue: "QBATCH", Sequence: 10, MaxActive: 5},
			{JobQueue: "QSPL", Sequence: 20, MaxActive: 1},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.Get(ctx, "qtest")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || len(got.Queues) != 2 {
		t.Fatalf("subsystem = %+v", got)
	}
	if got.Queues[0].JobQueue != "QBATCH" || got.Queues[1].JobQueue != "QSPL" {
		t.Fatalf("queues = %+v", got.Queues)
	}
}

func TestSubsystemCreateIsAtomic(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := repository.NewSubsystemRepo(db)

	err := repo.Create(ctx, repository.Subsystem{
		Name: "QTEST",
		Queues: []repository.SubsystemQueue{
			{JobQueue: "QBATCH"},
			{JobQueue: "QBATCH"}, // second insert violates the queue primary key
		},
	})
	if err == nil {
		t.Fatal("duplicate queue entry should fail the create")
	}

	got, err := repo.Get(ctx, "QTEST")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("subsystem row survived a failed create: %+v", got)
	}
}
