package model

// AllTasksDescription is shown when no single task is selected or the task
// has no entry in TaskDescriptions.
const AllTasksDescription = "Average of all tasks."

// TaskDescriptions maps movement task names to a one-sentence instruction.
var TaskDescriptions = map[string]string{
	"CrossArms":   "Cross and extend both arms.",
	"DrinkGlas":   "Grasp an empty glass as if drinking from it.",
	"Entrainment": "The examiner stomps on the ground, setting the pace. Start stomping and leave the arms extended during the movement.",
	"HoldWeight":  "Hold one-kilogram weight in each hand for 5 secs.",
	"LiftHold":    "Lift and extend arms and hold.",
	"PointFinger": "Point index finger to the examiners lifted hand.",
	"Relaxed":     "Resting with closed eyes while sitting.",
	"RelaxedTask": "Resting while patient is calculating serial sevens.",
	"StretchHold": "Strech and hold your arms.",
	"TouchIndex":  "Bring both index fingers to each other.",
	"TouchNose":   "Tap own nose with index finger.",
}

// DescribeTask returns the description for a task name, falling back to
// AllTasksDescription for unknown names.
func DescribeTask(name string) string {
	if desc, ok := TaskDescriptions[name]; ok {
		return desc
	}
	return AllTasksDescription
}
