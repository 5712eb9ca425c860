package statistics

import (
	"fmt"
	"sync"
)

type statisticsData struct {
	dataMap map[string]int

	mutex sync.Mutex
}

var (
	stats *statisticsData
	once  sync.Once
)

func get() *statisticsData {
	once.Do(func() {
		stats = &statisticsData{
			dataMap: make(map[string]int),
		}
	})

	return stats
}

func Set(key string, value int) {
	s := get()
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.dataMap[key] = value
}

func Change(key string, value int) {
	s := get()
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.dataMap[key] += value
}

func Get(key string) int {
	s := get()
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.dataMap[key]
}

func Display() string {
	s := get()
	s.mutex.Lock()
	defer s.mutex.Unlock()

	result := "Statistics results are:\n"
	for key, value := range s.dataMap {
		result += fmt.Sprintf("Number of %s is %d\n", key, value)
	}

	return result
}
