package model

// Task is one unit of offloadable work. All attributes are fixed at
// construction; tasks are read-only during optimization.
type Task struct {
	Id         int
	Workload   float64 // million instructions
	InputSize  float64 // MB
	OutputSize float64 // MB
	Memory     float64 // MB
	Deadline   float64 // seconds
	Critical   bool
}

// TotalDataSize is the input plus output transfer volume.
func (t *Task) TotalDataSize() float64 {
	return t.InputSize + t.OutputSize
}
