package matcher

// Category 相关技能分类，Terms 保持定义顺序
type Category struct {
	Name  string
	Terms []string
}

// Taxonomy 启动时加载后只读的相关技能表
type Taxonomy struct {
	categories []Category
	normalized [][]string
}

// NewTaxonomy 按给定顺序构建相关技能表
func NewTaxonomy(categories []Category) *Taxonomy {
	t := &Taxonomy{categories: make([]Category, len(categories))}
	for i, c := range categories {
		terms := append([]string(nil), c.Terms...)
		t.categories[i] = Category{Name: c.Name, Terms: terms}
		norm := make([]string, len(terms))
		for j, term := range terms {
			norm[j] = Normalize(term)
		}
		t.normalized = append(t.normalized, norm)
	}
	return t
}

// DefaultTaxonomy 默认相关技能表
func DefaultTaxonomy() *Taxonomy {
	return NewTaxonomy([]Category{
		{Name: "python", Terms: []string{"django", "flask", "fastapi", "pyramid"}},
		{Name: "javascript", Terms: []string{"typescript", "nodejs", "react", "vue", "angular"}},
		{Name: "java", Terms: []string{"spring", "hibernate", "junit", "maven"}},
		{Name: "cloud", Terms: []string{"aws", "azure", "gcp", "docker", "kubernetes"}},
		{Name: "database", Terms: []string{"sql", "mysql", "postgresql", "mongodb", "redis"}},
		{Name: "testing", Terms: []string{"junit", "pytest", "jest", "selenium", "cypress"}},
		{Name: "version_control", Terms: []string{"git", "svn", "mercurial"}},
		{Name: "ci_cd", Terms: []string{"jenkins", "travis", "gitlab-ci", "github-actions"}},
	})
}

// Categories 返回分类副本
func (t *Taxonomy) Categories() []Category {
	out := make([]Category, len(t.categories))
	copy(out, t.categories)
	return out
}

// CategoryOf 返回第一个包含该技能的分类名
func (t *Taxonomy) CategoryOf(skill string) (string, bool) {
	n := Normalize(skill)
	for i, terms := range t.normalized {
		if containsString(terms, n) {
			return t.categories[i].Name, true
		}
	}
	return "", false
}

// Related 在候选技能中查找与required同属一个分类的技能
// 按分类顺序尝试，required可能出现在多个分类中
func (t *Taxonomy) Related(required string, candidates []string) (string, bool) {
	n := Normalize(required)
	for _, terms := range t.normalized {
		if !containsString(terms, n) {
			continue
		}
		for _, c := range candidates {
			if containsString(terms, Normalize(c)) {
				return c, true
			}
		}
	}
	return "", false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
