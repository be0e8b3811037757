package extractor

import (
	"strings"
	"testing"

	"resume-matcher/internal/segmenter"
	"resume-matcher/internal/types"

	"github.com/jdkato/prose/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `Jane Doe
Seattle, WA | jane.doe@example.com | (206) 555-0147
linkedin.com/in/janedoe | github.com/janedoe | https://janedoe.dev
SUMMARY
Backend engineer focused on distributed systems.
Building reliable APIs.
TECHNICAL SKILLS
Languages: Go, Python, C++
Cloud: Docker, Kubernetes, AWS
Frameworks Django
EDUCATION
MIT 2016-2020
Bachelor of Science in Computer Science GPA: 3.8
WORK EXPERIENCE
Senior Software Engineer Jan 2021 - Present
Acme Corp
• Built Go services on Kubernetes
• Migrated Python jobs to Docker
Software Engineer Intern 2019 - 2020
Globex
• Wrote Java tooling
PROJECTS
Resume Matcher 2022 - 2023
• Matching engine in Go with Docker, code at github.com/janedoe/resume-matcher
• Uses React and Node.js frontend
CERTIFICATIONS
• AWS Certified Solutions Architect
LANGUAGES
English (Native), Spanish: Intermediate`

func TestExtractFullResume(t *testing.T) {
	record := New(WithLocationFinder(NewGazetteer(nil))).Extract(sampleResume)

	assert.Equal(t, types.ContactInfo{
		Name:      "Jane Doe",
		Email:     "jane.doe@example.com",
		Phone:     "(206) 555-0147",
		Location:  "Seattle, WA",
		LinkedIn:  "linkedin.com/in/janedoe",
		GitHub:    "github.com/janedoe",
		Portfolio: "https://janedoe.dev",
	}, record.ContactInfo)

	assert.Equal(t, "Backend engineer focused on distributed systems. Building reliable APIs.", record.Summary)

	require.Len(t, record.Skills, 6, "不含冒号的技能行应被忽略")
	assert.Equal(t, types.SkillEntry{Name: "C++", Category: "languages"}, record.Skills[2])
	assert.Equal(t, types.SkillEntry{Name: "AWS", Category: "cloud"}, record.Skills[5])

	require.Len(t, record.Education, 1)
	assert.Equal(t, "MIT", record.Education[0].Institution)

	require.Len(t, record.Experience, 2)
	first := record.Experience[0]
	assert.Equal(t, "Senior Software Engineer", first.Position)
	assert.Equal(t, "Acme Corp", first.Company)
	assert.Equal(t, "Jan 2021", first.StartDate)
	assert.Equal(t, "Present", first.EndDate)
	assert.True(t, first.Current)
	assert.Equal(t, []string{"Python", "Docker", "Kubernetes"}, first.Skills)

	second := record.Experience[1]
	assert.Equal(t, "Software Engineer Intern", second.Position)
	assert.Equal(t, "2019", second.StartDate)
	assert.Equal(t, "2020", second.EndDate)
	assert.False(t, second.Current)
	assert.Equal(t, "• Wrote Java tooling", second.Description)

	require.Len(t, record.Projects, 1)
	p := record.Projects[0]
	assert.Equal(t, "Resume Matcher", p.Name)
	assert.Equal(t, "2022", p.StartDate)
	assert.Equal(t, "2023", p.EndDate)
	assert.Equal(t, []string{"React", "Node.js", "Docker"}, p.Technologies)
	assert.Equal(t, "github.com/janedoe/resume-matcher", p.URL)
	assert.True(t, strings.HasPrefix(p.Description, "Matching engine"), "描述应去掉项目符号")

	assert.Equal(t, []string{"AWS Certified Solutions Architect"}, record.Certifications)
	assert.Equal(t, []types.LanguageEntry{
		{Language: "English", Proficiency: "Native"},
		{Language: "Spanish", Proficiency: "Intermediate"},
	}, record.Languages)
	assert.Equal(t, sampleResume, record.RawText)
}

func TestSkillNamesRoundTrip(t *testing.T) {
	text := "SKILLS\nLanguages: Go, go, Python\nTools: Git"
	record := New().Extract(text)
	assert.Equal(t, []string{"Go", "go", "Python", "Git"}, record.SkillNames(), "技能名应保留大小写和字面重复")
}

func TestParseEducationPairs(t *testing.T) {
	entries := ParseEducation("MIT 2016-2020\nBachelor of Science in Computer Science GPA: 3.8")
	require.Len(t, entries, 1)
	assert.Equal(t, types.EducationEntry{
		Institution:  "MIT",
		Degree:       "Bachelor of Science",
		FieldOfStudy: "Computer Science",
		StartDate:    "2016",
		EndDate:      "2020",
		GPA:          "3.8",
	}, entries[0])

	entries = ParseEducation("Stanford University Sep 2020 to Present\nMaster of Science in Statistics\nCommunity College\nAssociate degree")
	require.Len(t, entries, 2)
	assert.Equal(t, "Stanford University", entries[0].Institution)
	assert.Equal(t, "Sep 2020", entries[0].StartDate)
	assert.Equal(t, "Present", entries[0].EndDate)
	assert.Equal(t, "Master of Science", entries[0].Degree)
	assert.Equal(t, "Statistics", entries[0].FieldOfStudy)
	assert.Equal(t, "Community College", entries[1].Institution, "没有日期时整行作为学校")
	assert.Equal(t, "Associate", entries[1].Degree)
	assert.Empty(t, entries[1].GPA)

	entries = ParseEducation("Harvard 2012")
	require.Len(t, entries, 1)
	assert.Equal(t, "Harvard", entries[0].Institution)
	assert.Equal(t, "2012", entries[0].EndDate, "单个年份作为结束日期")
	assert.Empty(t, entries[0].StartDate)
}

func TestParseExperienceBoundaries(t *testing.T) {
	text := "Data Analyst\nInitech\nBuilt SQL dashboards\nSupported finance team"
	entries := ParseExperience(text)
	require.Len(t, entries, 1, "职位关键词应开启新经历")
	assert.Equal(t, "Data Analyst", entries[0].Position)
	assert.Equal(t, "Initech", entries[0].Company)
	assert.Equal(t, "Built SQL dashboards\nSupported finance team", entries[0].Description)
	assert.Equal(t, []string{"SQL"}, entries[0].Skills)
	assert.Empty(t, entries[0].StartDate)

	entries = ParseExperience("Backend Developer (2015 to 2018)\nHooli")
	require.Len(t, entries, 1)
	assert.Equal(t, "Backend Developer", entries[0].Position)
	assert.Equal(t, "2015", entries[0].StartDate)
	assert.Equal(t, "2018", entries[0].EndDate)
	assert.Empty(t, entries[0].Description)
	assert.Equal(t, []string{}, entries[0].Skills)
}

func TestParseExperienceBulletLinesCanStartEntries(t *testing.T) {
	text := "Software Engineer 2019 - 2021\nAcme Corp\n• Shipped the 2020 billing rewrite\n• Mentored a junior developer\nMore notes"
	entries := ParseExperience(text)
	require.Len(t, entries, 3, "带年份或职位关键词的项目符号行同样开启新经历")

	assert.Equal(t, "Software Engineer", entries[0].Position)
	assert.Equal(t, "Acme Corp", entries[0].Company)
	assert.Empty(t, entries[0].Description)

	assert.Equal(t, "Shipped the billing rewrite", entries[1].Position, "职位应去掉项目符号和年份")
	assert.Equal(t, "2020", entries[1].EndDate)

	assert.Equal(t, "Mentored a junior developer", entries[2].Position)
	assert.Equal(t, "More notes", entries[2].Company)

	entries = ParseExperience("Backend Developer 2018 - 2020\nHooli\n• Built APIs\n• Ran on-call")
	require.Len(t, entries, 1, "不含年份和关键词的项目符号行属于描述")
	assert.Equal(t, "• Built APIs\n• Ran on-call", entries[0].Description)
}

func TestMissingSectionsYieldEmptyResults(t *testing.T) {
	sections := segmenter.Split("Just a name line\nand nothing else")
	assert.Empty(t, ExtractSkills(sections))
	assert.Empty(t, ExtractEducation(sections))
	assert.Empty(t, ExtractExperience(sections))
	assert.Empty(t, ExtractProjects(sections))
	assert.Empty(t, ExtractCertifications(sections))
	assert.Empty(t, ExtractLanguages(sections))
	assert.Empty(t, ExtractSummary(sections))
	assert.NotNil(t, ExtractSkills(sections), "缺失章节应返回空列表而不是nil")
}

func TestProjectsFromMultipleSections(t *testing.T) {
	sections := segmenter.Split("PERSONAL PROJECTS\nCLI Tool\n• Written in Python\nACADEMIC PROJECTS\nCompiler\n• C++ and Git, see gitlab.com/me/compiler")
	projects := ExtractProjects(sections)
	require.Len(t, projects, 2)
	assert.Equal(t, "CLI Tool", projects[0].Name)
	assert.Equal(t, []string{"Python"}, projects[0].Technologies)
	assert.Equal(t, "Compiler", projects[1].Name)
	assert.Equal(t, []string{"C++", "Git"}, projects[1].Technologies)
	assert.Equal(t, "gitlab.com/me/compiler", projects[1].URL)
}

func TestParseLanguagesForms(t *testing.T) {
	langs := ParseLanguages("English - Fluent\nGerman\nFrench (B2); Japanese: Basic")
	assert.Equal(t, []types.LanguageEntry{
		{Language: "English", Proficiency: "Fluent"},
		{Language: "German"},
		{Language: "French", Proficiency: "B2"},
		{Language: "Japanese", Proficiency: "Basic"},
	}, langs)
}

func TestContactPhoneRequiresTenDigits(t *testing.T) {
	sections := segmenter.Split("Alex Kim\nCall 555-0147 or 212.555.0198")
	info := NewContactExtractor(NewGazetteer(nil)).Extract(sections, "Alex Kim\nCall 555-0147 or 212.555.0198")
	assert.Equal(t, "212.555.0198", info.Phone, "少于10位的号码应被跳过")
	assert.Empty(t, info.Email)
	assert.Empty(t, info.Location)
}

func TestGazetteerFindLocation(t *testing.T) {
	g := NewGazetteer(nil)
	assert.Equal(t, "London", g.FindLocation("Jane\nBased in London, looking to relocate to Berlin"))
	assert.Equal(t, "Austin, TX", g.FindLocation("Sam Lee\nAustin, TX"))
	assert.Empty(t, g.FindLocation(strings.Repeat("x", 1000)+" London"), "只检查开头1000个字符")

	custom := NewGazetteer([]string{"Gotham"})
	assert.Equal(t, "Gotham", custom.FindLocation("Bruce Wayne, Gotham"))
}

type stubLocations string

func (s stubLocations) FindLocation(string) string { return string(s) }

func TestFirstPlace(t *testing.T) {
	window := "Jane Doe\nSeattle, WA | jane@example.com"
	ents := []prose.Entity{
		{Text: "Jane Doe", Label: "PERSON"},
		{Text: "Seattle", Label: "GPE"},
	}
	assert.Equal(t, "Seattle, WA", firstPlace(ents, window), "紧跟的州缩写应并入地名")

	assert.Equal(t, "Berlin", firstPlace([]prose.Entity{{Text: "Berlin", Label: "GPE"}}, "Berlin, QQ"), "非法州缩写不并入")
	assert.Equal(t, "Paris", firstPlace([]prose.Entity{{Text: "Paris", Label: "GPE"}}, "moved"), "实体不在窗口中时原样返回")
	assert.Empty(t, firstPlace([]prose.Entity{{Text: "Acme", Label: "ORG"}}, "Acme"), "只取GPE实体")
	assert.Empty(t, firstPlace(nil, window))
}

func TestNERLocationFinderFallsBack(t *testing.T) {
	f := NewNERLocationFinder(stubLocations("Gotham"), nil)
	assert.Equal(t, "Gotham", f.FindLocation("nothing here but lowercase words"), "识别不到地名时使用后备实现")
	assert.Empty(t, f.FindLocation("   \n "), "空文本不查找")

	_, ok := NewContactExtractor(nil).locations.(*NERLocationFinder)
	assert.True(t, ok, "默认地点识别应为实体识别")
}

func TestExtractKeywordsBoundaries(t *testing.T) {
	assert.Equal(t, []string{"c#", "c++", "google cloud", "node.js"}, ExtractKeywords("Knows C++ and C#, node.js; going to Google Cloud"))
	assert.Nil(t, ExtractKeywords("   "))
	assert.Empty(t, ExtractKeywords("email and mongoose"), "子串不应命中")
}

func TestParseLightweight(t *testing.T) {
	text := "John Smith\njohn@example.com\n+1 415 555 0100\nExperienced in Python, Go and Kubernetes. Familiar with SQL Server and CI/CD."
	record := ParseLightweight(text)

	assert.Equal(t, "John Smith", record.ContactInfo.Name)
	assert.Equal(t, "john@example.com", record.ContactInfo.Email)
	assert.Equal(t, "+1 415 555 0100", record.ContactInfo.Phone)
	assert.Equal(t, []types.SkillEntry{
		{Name: "ci/cd", Category: "devops"},
		{Name: "go", Category: "languages"},
		{Name: "kubernetes", Category: "devops"},
		{Name: "python", Category: "languages"},
		{Name: "sql", Category: "database"},
		{Name: "sql server", Category: "database"},
	}, record.Skills)
	assert.Empty(t, record.Education)
}
