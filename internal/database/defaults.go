package database

import (
	"context"
	"database/sql"

	"github.com/oplab/lab400/internal/auth"
	"github.com/oplab/lab400/internal/database/repository"
)

// SeedDefaults ensures the default system users, the command table, and
// baseline system objects exist. It is idempotent and safe to run on
// every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	if err := seedUsers(ctx, db); err != nil {
		return err
	}
	if err := seedCommands(ctx, db); err != nil {
		return err
	}
	return seedSystemObjects(ctx, db)
}

func seedUsers(ctx context.Context, db *sql.DB) error {
	users := repository.NewUserRepo(db)
	defaults := []struct {
		name, password, class, desc string
	}{
		{"QSECOFR", "QSECOFR", "*SECOFR", "Security Officer"},
		{"QSYSOPR", "QSYSOPR", "*SYSOPR", "System Operator"},
		{"QUSER", "QUSER", "*USER", "Default User"},
	}
	for _, d := range defaults {
		existing, err := users.Get(ctx, d.name)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		salt, err := auth.NewSalt()
		if err != nil {
			return err
		}
		err = users.Create(ctx, repository.UserProfile{
			Username:     d.name,
			PasswordHash: auth.HashPassword(d.password, salt),
			Salt:         salt,
			UserClass:    d.class,
			Description:  d.desc,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func seedCommands(ctx context.Context, db *sql.DB) error {
	commands := repository.NewCommandRepo(db)

	entries := []repository.CommandEntry{
		{Name: "WRKACTJOB", Description: "Work with Active Jobs", ScreenName: "wrkactjob"},
		{Name: "WRKJOBQ", Description: "Work with Job Queues", ScreenName: "wrkjobq"},
		{Name: "WRKSVC", Description: "Work with Services", ScreenName: "wrksvc"},
		{Name: "DSPSYSSTS", Description: "Display System Status", ScreenName: "dspsyssts"},
		{Name: "DSPLOG", Description: "Display Log", ScreenName: "dsplog"},
		{Name: "SBMJOB", Description: "Submit Job", ScreenName: "sbmjob"},
		{Name: "WRKUSRPRF", Description: "Work with User Profiles", ScreenName: "wrkusrprf"},
		{Name: "CRTUSRPRF", Description: "Create User Profile", ScreenName: "crtusrprf"},
		{Name: "WRKMSGQ", Description: "Work with Message Queues", ScreenName: "wrkmsgq"},
		{Name: "WRKSPLF", Description: "Work with Spooled Files", ScreenName: "wrksplf"},
		{Name: "WRKJOBSCDE", Description: "Work with Job Schedule Entries", ScreenName: "wrkjobscde"},
		{Name: "WRKSBSD", Description: "Work with Subsystem Descriptions", ScreenName: "wrksbsd"},
		{Name: "WRKSYSVAL", Description: "Work with System Values", ScreenName: "wrksysval"},
		{Name: "WRKDTAARA", Description: "Work with Data Areas", ScreenName: "wrkdtaara"},
		{Name: "WRKJOBD", Description: "Work with Job Descriptions", ScreenName: "wrkjobd"},
		{Name: "WRKAUTL", Description: "Work with Authorization Lists", ScreenName: "wrkautl"},
		{Name: "SIGNOFF", Description: "Sign Off", ScreenName: "signon"},
		{Name: "GO", Description: "Go to Menu", ScreenName: "main"},
	}
	for _, e := range entries {
		if err := commands.Upsert(ctx, e); err != nil {
			return err
		}
	}

	parms := []repository.CommandParameter{
		{CommandName: "SBMJOB", Name: "TASK", Ordinal: 1, PromptText: "Command to run", Required: true, Length: 30},
		{CommandName: "SBMJOB", Name: "JOBQ", Ordinal: 2, PromptText: "Job queue", DefaultVal: "QBATCH", Length: 10},
		{CommandName: "SBMJOB", Name: "DELAY", Ordinal: 3, PromptText: "Delay (seconds)", DataType: "*DEC", DefaultVal: "0", Length: 5},
		{CommandName: "CRTUSRPRF", Name: "USRCLS", Ordinal: 1, PromptText: "User class", DefaultVal: "*USER", Length: 10},
	}
	for _, p := range parms {
		if p.DataType == "" {
			p.DataType = "*CHAR"
		}
		if err := commands.UpsertParameter(ctx, p); err != nil {
			return err
		}
	}

	validValues := []struct {
		command, parm string
		values        []repository.ValidValue
	}{
		{"SBMJOB", "TASK", []repository.ValidValue{
			{Value: "lab400:ping", Description: "Connectivity test"},
			{Value: "lab400:echo", Description: "Echo a message"},
			{Value: "lab400:delay", Description: "Sleep for N seconds"},
			{Value: "lab400:add", Description: "Add two numbers"},
		}},
		{"SBMJOB", "JOBQ", []repository.ValidValue{
			{Value: "QBATCH", Description: "Batch job queue"},
			{Value: "QINTER", Description: "Interactive job queue"},
			{Value: "QSPL", Description: "Spool job queue"},
		}},
		{"CRTUSRPRF", "USRCLS", []repository.ValidValue{
			{Value: "*SECOFR", Description: "Security officer"},
			{Value: "*SECADM", Description: "Security administrator"},
			{Value: "*PGMR", Description: "Programmer"},
			{Value: "*SYSOPR", Description: "System operator"},
			{Value: "*USER", Description: "User"},
		}},
	}
	for _, vv := range validValues {
		for i, v := range vv.values {
			if err := commands.UpsertValidValue(ctx, vv.command, vv.parm, i+1, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func seedSystemObjects(ctx context.Context, db *sql.DB) error {
	subsystems := repository.NewSubsystemRepo(db)
	existing, err := subsystems.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		defaults := []repository.Subsystem{
			{Name: "QBATCH", Description: "Batch subsystem", MaxJobs: 10, Queues: []repository.SubsystemQueue{
				{JobQueue: "QBATCH", Sequence: 10, MaxActive: 5},
			}},
			{Name: "QINTER", Description: "Interactive subsystem", MaxJobs: 20, Queues: []repository.SubsystemQueue{
				{JobQueue: "QINTER", Sequence: 10, MaxActive: 10},
			}},
			{Name: "QSPL", Description: "Spooling subsystem", MaxJobs: 2, Queues: []repository.SubsystemQueue{
				{JobQueue: "QSPL", Sequence: 10, MaxActive: 1},
			}},
		}
		for _, s := range defaults {
			if err := subsystems.Create(ctx, s); err != nil {
				return err
			}
		}
	}

	messages := repository.NewMessageRepo(db)
	queues, err := messages.ListQueues(ctx)
	if err != nil {
		return err
	}
	if len(queues) == 0 {
		if err := messages.CreateQueue(ctx, repository.MessageQueue{
			Name: "QSYSOPR", Library: "QSYS", Description: "System operator message queue",
		}); err != nil {
			return err
		}
	}

	sysvals := repository.NewSystemValueRepo(db)
	for _, sv := range []struct{ name, value string }{
		{"QMODEL", "LAB400"},
		{"QSRLNBR", "10-78DKQ"},
		{"QSECURITY", "40"},
	} {
		existing, err := sysvals.Get(ctx, sv.name)
		if err != nil {
			return err
		}
		if existing == nil {
			if err := sysvals.Set(ctx, sv.name, sv.value, "SYSTEM"); err != nil {
				return err
			}
		}
	}
	return nil
}
