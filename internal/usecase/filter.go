package usecase

import "github.com/KarpovAlexandrGo/task-tracker/internal/entity"

// filterTasks keeps the tasks matching every active filter, in input order.
// An unrecognised status is ignored. Date filters compare UTC calendar dates;
// a range bound excludes tasks without a due date.
func filterTasks(tasks []entity.Task, f entity.TaskFilter) []entity.Task {
	var preds []func(entity.Task) bool

	if st, ok := entity.ParseStatus(f.Status); ok {
		preds = append(preds, func(t entity.Task) bool { return t.Status == st })
	}
	if f.DueDate != nil {
		day := entity.DateOf(*f.DueDate)
		preds = append(preds, func(t entity.Task) bool {
			return t.DueDate != nil && entity.DateOf(*t.DueDate).Equal(day)
		})
	}
	if f.StartDate != nil {
		start := entity.DateOf(*f.StartDate)
		preds = append(preds, func(t entity.Task) bool {
			return t.DueDate != nil && !entity.DateOf(*t.DueDate).Before(start)
		})
	}
	if f.EndDate != nil {
		end := entity.DateOf(*f.EndDate)
		preds = append(preds, func(t entity.Task) bool {
			return t.DueDate != nil && !entity.DateOf(*t.DueDate).After(end)
		})
	}

	out := make([]entity.Task, 0, len(tasks))
next:
	for _, t := range tasks {
		for _, keep := range preds {
			if !keep(t) {
				continue next
			}
		}
		out = append(out, t)
	}
	return out
}
