package entity

// Kind enumerates the content kinds that accumulate engagement.
type Kind string

const (
	KindPost      Kind = "post"
	KindSprint    Kind = "sprint"
	KindVehicle   Kind = "vehicle"
	KindTopic     Kind = "topic"
	KindCommunity Kind = "community"
)

// KindSpec describes how the engine treats one content kind.
type KindSpec struct {
	Kind Kind
	// Segment is the plural route segment the kind is served under.
	Segment string
	// Reward is the experience granted to the owner when the content is created.
	Reward int64
	// RequiresMedia rejects creation without an attached media file.
	RequiresMedia bool
	// DefaultMedia is used when no media file is attached.
	DefaultMedia string
	LikeText     string
	CommentText  string
}

var kindSpecs = map[Kind]KindSpec{
	KindPost: {
		Kind:        KindPost,
		Segment:     "posts",
		Reward:      50,
		LikeText:    "liked your post.",
		CommentText: "commented on your post.",
	},
	KindSprint: {
		Kind:          KindSprint,
		Segment:       "sprints",
		Reward:        40,
		RequiresMedia: true,
		LikeText:      "liked your sprint.",
		CommentText:   "commented on your sprint.",
	},
	KindVehicle: {
		Kind:         KindVehicle,
		Segment:      "vehicles",
		Reward:       100,
		DefaultMedia: "https://via.placeholder.com/600",
		LikeText:     "liked your vehicle.",
		CommentText:  "commented on your vehicle.",
	},
	KindTopic: {
		Kind:        KindTopic,
		Segment:     "topics",
		Reward:      30,
		LikeText:    "liked your topic.",
		CommentText: "replied to your topic.",
	},
	KindCommunity: {
		Kind:         KindCommunity,
		Segment:      "communities",
		Reward:       150,
		DefaultMedia: "https://via.placeholder.com/800",
		LikeText:     "liked your community.",
		CommentText:  "commented on your community.",
	},
}

// Kinds lists every content kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindPost, KindSprint, KindVehicle, KindTopic, KindCommunity}
}

// Spec returns the descriptor for k.
func (k Kind) Spec() (KindSpec, bool) {
	s, ok := kindSpecs[k]
	return s, ok
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := kindSpecs[k]
	return ok
}

// Segment returns the plural route segment of k ("posts", "communities").
func (k Kind) Segment() string { return kindSpecs[k].Segment }
