package progress

// Bucket - статус задачи для сводки на дашборде
type Bucket string

const (
	Ongoing   Bucket = "ongoing"
	InProcess Bucket = "inProcess"
	Completed Bucket = "completed"
)

// Counts - агрегированные счётчики задач по статусам
type Counts struct {
	Ongoing   int `json:"ongoing"`
	InProcess int `json:"inProcess"`
	Completed int `json:"completed"`
}

// Percent возвращает долю выполненных подзадач в процентах.
// Для задачи без подзадач прогресс равен 0.
func Percent(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// Classify определяет статус задачи по числу выполненных подзадач.
// Задача без подзадач считается не начатой.
func Classify(completed, total int) Bucket {
	switch {
	case completed == 0:
		return Ongoing
	case completed < total:
		return InProcess
	default:
		return Completed
	}
}

// Add учитывает одну задачу в счётчиках
func (c *Counts) Add(completed, total int) {
	switch Classify(completed, total) {
	case Ongoing:
		c.Ongoing++
	case InProcess:
		c.InProcess++
	case Completed:
		c.Completed++
	}
}

func (c Counts) Total() int {
	return c.Ongoing + c.InProcess + c.Completed
}
