package api

import (
	"strconv"

	"mealcheck/pkg/collection"
)

// indexPage is the data rendered by templates/index.html.
type indexPage struct {
	Sheets  []string
	Sheet   string
	Roll    string
	Error   string
	Notice  string
	Student *studentCard
}

type studentCard struct {
	collection.StudentRecord
	Veg       bool
	Collected bool
}

func newStudentCard(r collection.StudentRecord) *studentCard {
	return &studentCard{
		StudentRecord: r,
		Veg:           r.IsVeg(),
		Collected:     r.IsCollected(),
	}
}

func newStudentResponse(r collection.StudentRecord) studentResponse {
	return studentResponse{
		StudentRecord: r,
		Veg:           r.IsVeg(),
		Collected:     r.IsCollected(),
	}
}

// heldRecord rebuilds the record the page was rendered with from the
// collect form's hidden fields.
func heldRecord(form func(string) string) (collection.StudentRecord, error) {
	row, err := strconv.Atoi(form("row"))
	if err != nil {
		return collection.StudentRecord{}, err
	}

	return collection.StudentRecord{
		RowPosition:  row,
		Roll:         form("roll"),
		Name:         form("name"),
		Preference:   form("preference"),
		Status:       form("status"),
		StatusColumn: form("column"),
	}, nil
}
