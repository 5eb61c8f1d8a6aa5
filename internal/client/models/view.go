package models

// Modal names the editing surface currently shown to the operator.
type Modal string

const (
	ModalNone       Modal = "none"
	ModalCreateUser Modal = "create-user"
	ModalEditUser   Modal = "edit-user"
	ModalUserInfo   Modal = "user-info"
)

// View is the top-level screen selected by the session gate.
type View string

const (
	ViewLogin      View = "login"
	ViewManagement View = "management"
)

// ViewState is the presentation state driven by the synchronizer. It is a
// value type; callers receive copies.
type ViewState struct {
	ActiveModal Modal
	// Selected is the entry shown in the info or edit surface.
	Selected *User
	// PriorUsername addresses the pending edit; it is the username before
	// the operator changed anything.
	PriorUsername string
	StagedImage   *Image
	Refreshing    bool
}
