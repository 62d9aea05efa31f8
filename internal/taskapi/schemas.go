package taskapi

import (
	"taskflow-backend/internal/common/validation"
)

var registerRequestSchema = validation.MustCompile(map[string]interface{}{
	"type":                 "object",
	"required":             []interface{}{"name", "email", "password"},
	"additionalProperties": false,
	"properties": map[string]interface{}{
		"name": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"email": map[string]interface{}{
			"type":   "string",
			"format": "email",
		},
		"password": map[string]interface{}{
			"type":      "string",
			"minLength": 6,
		},
	},
})

var loginRequestSchema = validation.MustCompile(map[string]interface{}{
	"type":                 "object",
	"required":             []interface{}{"email", "password"},
	"additionalProperties": false,
	"properties": map[string]interface{}{
		"email": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"password": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
	},
})

var createTaskRequestSchema = validation.MustCompile(map[string]interface{}{
	"type":                 "object",
	"required":             []interface{}{"title"},
	"additionalProperties": false,
	"properties": map[string]interface{}{
		"title": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"description": map[string]interface{}{
			"type": "string",
		},
		"dueDate": map[string]interface{}{
			"type":   "string",
			"format": "date-time",
		},
		"priority": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"LOW", "MEDIUM", "HIGH"},
		},
		"status": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"TODO", "IN_PROGRESS", "COMPLETED"},
		},
		"assignedTo": map[string]interface{}{
			"type": "string",
		},
	},
})

var updateTaskRequestSchema = validation.MustCompile(map[string]interface{}{
	"type":                 "object",
	"additionalProperties": false,
	"minProperties":        1,
	"properties": map[string]interface{}{
		"title": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"description": map[string]interface{}{
			"type": "string",
		},
		"dueDate": map[string]interface{}{
			"type":   "string",
			"format": "date-time",
		},
		"priority": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"LOW", "MEDIUM", "HIGH"},
		},
		"status": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"TODO", "IN_PROGRESS", "COMPLETED"},
		},
		"assignedTo": map[string]interface{}{
			"type": "string",
		},
	},
})
