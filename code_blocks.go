package main

// CodeBlock is one exercise offered by the lobby.
type CodeBlock struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Code  string `json:"code"`
}

var codeBlocks = []CodeBlock{
	{ID: 1, Title: "Async Case", Code: "async function fetchData() {...}"},
	{ID: 2, Title: "Array Manipulation", Code: "const arr = [1, 2, 3];..."},
	{ID: 3, Title: "Event Handling", Code: "document.getElementById(\"btn\").addEventListener..."},
	{ID: 4, Title: "Conditional Rendering", Code: "if (isLoggedIn) {...}"},
}
