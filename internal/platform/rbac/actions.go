package rbac

// Action names a guarded operation. The role → action table lives in policy.rego.
type Action string

const (
	ActionPlanCreate      Action = "plan.create"
	ActionPlanRead        Action = "plan.read"
	ActionPlanUpdate      Action = "plan.update"
	ActionPlanDelete      Action = "plan.delete"
	ActionPlanSimulate    Action = "plan.simulate"
	ActionPlanValidate    Action = "plan.validate"
	ActionProgramSubmit   Action = "program.submit"
	ActionProgramRead     Action = "program.read"
	ActionProgramReview   Action = "program.review"
	ActionProgramExecute  Action = "program.execute"
	ActionProgramCapture  Action = "program.capture"
	ActionProgramAbort    Action = "program.abort"
	ActionObservationRead Action = "observation.read"
	ActionProgressRead    Action = "progress.read"
	ActionCatalogRead     Action = "catalog.read"
	ActionAuditRead       Action = "audit.read"
	ActionUserManage      Action = "user.manage"
)
