package envelope

import "net/http"

// Convention selects the wire shape of a rendered Reply.
type Convention int

const (
	// ConventionA renders {success, message, data, pagination}.
	ConventionA Convention = iota
	// ConventionB renders {status: {success, message, errorCode}, data}.
	ConventionB
)

// String returns a short name for logs and route listings.
func (c Convention) String() string {
	if c == ConventionB {
		return "B"
	}
	return "A"
}

// Pagination describes one page of a filtered list.
type Pagination struct {
	Current    int `json:"current"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination builds a Pagination block. TotalPages is ceil(total/pageSize).
func NewPagination(current, pageSize, total int) Pagination {
	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	return Pagination{Current: current, PageSize: pageSize, Total: total, TotalPages: pages}
}

// Reply is the canonical result of a mock handler.
type Reply struct {
	StatusCode int
	Success    bool
	Message    string
	ErrorCode  string
	Data       any
	Pagination *Pagination
}

// OK returns a successful reply carrying data.
func OK(data any) *Reply {
	return &Reply{StatusCode: http.StatusOK, Success: true, Data: data}
}

// OKMessage returns a successful reply with a human readable message.
func OKMessage(message string, data any) *Reply {
	return &Reply{StatusCode: http.StatusOK, Success: true, Message: message, Data: data}
}

// Paged returns a successful list reply.
func Paged(items any, p Pagination) *Reply {
	return &Reply{StatusCode: http.StatusOK, Success: true, Data: items, Pagination: &p}
}

// Fail returns a failed reply with the given status, code and message.
func Fail(status int, code, message string) *Reply {
	return &Reply{StatusCode: status, Success: false, ErrorCode: code, Message: message}
}

// Status returns the HTTP status code for the reply, defaulting to 200 for
// successes and 500 for failures without an explicit code.
func (r *Reply) Status() int {
	if r.StatusCode != 0 {
		return r.StatusCode
	}
	if r.Success {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

// BodyA is the Convention A wire shape.
type BodyA struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// StatusBlock is the nested status object of Convention B.
type StatusBlock struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
}

// BodyB is the Convention B wire shape.
type BodyB struct {
	Status StatusBlock `json:"status"`
	Data   any         `json:"data,omitempty"`
}

// PagedData is the data payload of a paginated Convention B reply.
type PagedData struct {
	Items      any        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Render converts the reply to the wire body for the given convention.
func (r *Reply) Render(conv Convention) any {
	if conv == ConventionB {
		data := r.Data
		if r.Pagination != nil {
			data = PagedData{Items: r.Data, Pagination: *r.Pagination}
		}
		return BodyB{
			Status: StatusBlock{Success: r.Success, Message: r.Message, ErrorCode: r.ErrorCode},
			Data:   data,
		}
	}
	return BodyA{
		Success:    r.Success,
		Message:    r.Message,
		Data:       r.Data,
		Pagination: r.Pagination,
	}
}
