package api

// SubmitRequest 客户端提交的内容请求体
type SubmitRequest struct {
	Message string `json:"message"`
}
