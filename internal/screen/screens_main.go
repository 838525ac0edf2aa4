package screen

import "context"

func mainScreen() *ScreenDef {
	return &ScreenDef{
		Name:   "main",
		Title:  "LAB400 Main Menu",
		Render: renderMain,
	}
}

var mainMenuItems = []struct {
	option string
	label  string
}{
	{"1", "Work with active jobs (WRKACTJOB)"},
	{"2", "Work with job queues (WRKJOBQ)"},
	{"3", "Work with services (WRKSVC)"},
	{"4", "Display system status (DSPSYSSTS)"},
	{"5", "Display log (DSPLOG)"},
	{"6", "Submit a job (SBMJOB)"},
	{"7", "Work with user profiles (WRKUSRPRF)"},
	{"8", "Work with message queues (WRKMSGQ)"},
	{"9", "Work with spooled files (WRKSPLF)"},
	{"10", "Work with job schedule entries (WRKJOBSCDE)"},
	{"90", "Sign off"},
}

func renderMain(ctx context.Context, e *Engine, sess *Session) RenderResult {
	const width = 80
	rows := titleRows(width, "LAB400 Main Menu")
	rows = append(rows, blankRow(), textRow("Select one of the following:"), blankRow())
	for _, item := range mainMenuItems {
		rows = append(rows, Row{text("     " + pad(item.option+".", 5) + item.label)})
	}
	rows = append(rows,
		blankRow(),
		textRow("Selection or command"),
		commandRow(sess),
	)
	return RenderResult{
		Rows:  rows,
		Focus: "cmd",
		Keys:  []Key{{"F3", "Exit"}, {"F4", "Prompt"}},
	}
}
