package domain

type Hashtag struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Category    string `json:"category"`
}

// UserHashtag is one flat (user, hashtag) association row.
type UserHashtag struct {
	UserID  int64
	Hashtag Hashtag
}

type HashtagUsage struct {
	Hashtag
	UserCount int `json:"userCount"`
}

type CategoryStats struct {
	Category      string `json:"category"`
	TotalHashtags int    `json:"totalHashtags"`
	TotalUsers    int    `json:"totalUsers"`
}

type HashtagTotals struct {
	TotalHashtags          int `json:"totalHashtags"`
	TotalUsersWithHashtags int `json:"totalUsersWithHashtags"`
	TotalAssignments       int `json:"totalAssignments"`
}
