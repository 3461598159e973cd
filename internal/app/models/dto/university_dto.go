package dto

// UniversityMemberResponse is one member listed under a department
type UniversityMemberResponse struct {
	Username string `json:"username" example:"jdoe"`
	Email    string `json:"email" example:"jdoe@uni.edu"`
}

// UniversityPageResponse groups a university's members by department and lists
// member posts tagged with the university hashtag
type UniversityPageResponse struct {
	University   string                                `json:"university" example:"TestUniversity"`
	TotalMembers int                                   `json:"total_members" example:"2"`
	Departments  map[string][]UniversityMemberResponse `json:"departments"`
	PostIDs      []int64                               `json:"post_ids"`
	Hashtag      string                                `json:"hashtag" example:"testuniversity"`
	HashtagUsage int                                   `json:"hashtag_usage" example:"1"`
}
