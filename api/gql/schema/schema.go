package schema

import (
	"github.com/caesium-cloud/lgflow/api/rest/service/task"
	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/caesium-cloud/lgflow/internal/role"
	"github.com/caesium-cloud/lgflow/internal/workflow"
	"github.com/graphql-go/graphql"
)

// New instantiates a fresh GraphQL schema for lgflow's read API.
func New() graphql.SchemaConfig {
	return graphql.SchemaConfig{
		Query: graphql.NewObject(
			graphql.ObjectConfig{
				Name:   "Query",
				Fields: fields(),
			},
		),
	}
}

var taskType = graphql.NewObject(graphql.ObjectConfig{
	Name:   "Task",
	Fields: taskFields(),
})

func taskFields() graphql.Fields {
	f := graphql.Fields{}
	for _, col := range models.Columns {
		var t graphql.Output = graphql.String
		switch col {
		case "amount", "current_total", "comm_amount":
			t = graphql.Float
		case "file_sent", "original_recvd":
			t = graphql.Boolean
		case "version":
			t = graphql.Int
		}
		f[col] = &graphql.Field{Type: t}
	}
	return f
}

var stepType = graphql.NewObject(graphql.ObjectConfig{
	Name: "LedgerStep",
	Fields: graphql.Fields{
		"task_id":        &graphql.Field{Type: graphql.String},
		"req_type":       &graphql.Field{Type: graphql.String},
		"amount":         &graphql.Field{Type: graphql.Float},
		"current_total":  &graphql.Field{Type: graphql.Float},
		"expected_total": &graphql.Field{Type: graphql.Float},
		"consistent":     &graphql.Field{Type: graphql.Boolean},
	},
})

var historyType = graphql.NewObject(graphql.ObjectConfig{
	Name: "History",
	Fields: graphql.Fields{
		"lg_number":  &graphql.Field{Type: graphql.String},
		"prev_total": &graphql.Field{Type: graphql.Float},
		"found":      &graphql.Field{Type: graphql.Boolean},
		"coerced":    &graphql.Field{Type: graphql.Boolean},
		"last":       &graphql.Field{Type: taskType},
		"ledger":     &graphql.Field{Type: graphql.NewList(stepType)},
	},
})

var dashboardType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Dashboard",
	Fields: graphql.Fields{
		"today":          &graphql.Field{Type: graphql.Int},
		"global_pending": &graphql.Field{Type: graphql.Int},
		"your_actions":   &graphql.Field{Type: graphql.Int},
		"total":          &graphql.Field{Type: graphql.Int},
	},
})

var transitionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Transition",
	Fields: graphql.Fields{
		"decision": &graphql.Field{Type: graphql.String},
		"role":     &graphql.Field{Type: graphql.String},
		"from":     &graphql.Field{Type: graphql.String},
		"to":       &graphql.Field{Type: graphql.String},
		"owner":    &graphql.Field{Type: graphql.String},
	},
})

func fields() graphql.Fields {
	return graphql.Fields{
		"task": &graphql.Field{
			Type: taskType,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return task.Service(p.Context).Get(p.Args["id"].(string))
			},
		},
		"tasks": &graphql.Field{
			Type: graphql.NewList(taskType),
			Args: graphql.FieldConfigArgument{
				"queue":     &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(role.QueueMaster)},
				"lg_number": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				actor, _ := role.FromContext(p.Context)
				return task.Service(p.Context).List(&task.ListRequest{
					Actor:    actor,
					Queue:    role.Queue(p.Args["queue"].(string)),
					LGNumber: p.Args["lg_number"].(string),
				})
			},
		},
		"history": &graphql.Field{
			Type: historyType,
			Args: graphql.FieldConfigArgument{
				"lg_number": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				resp, err := task.Service(p.Context).History(p.Args["lg_number"].(string))
				if err != nil {
					return nil, err
				}
				return historyView(resp), nil
			},
		},
		"dashboard": &graphql.Field{
			Type: dashboardType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				actor, _ := role.FromContext(p.Context)
				return task.Service(p.Context).Dashboard(actor)
			},
		},
		"transitions": &graphql.Field{
			Type: graphql.NewList(transitionType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return workflow.Transitions(), nil
			},
		},
	}
}
