package service

import (
	"reflect"
	"testing"

	"marinews/internal/domain/model"
)

var testRules = []model.TopicRule{
	{Name: "LNG", Include: []string{"LNG", "liquefied natural gas"}},
	{Name: "Ports", Include: []string{"port", "terminal"}},
	{Name: "Shipping", Include: []string{"shipping", "container"}},
}

func TestClassify_KeywordSubstringMatch(t *testing.T) {
	got := Classify("New LNG carrier delivered", "", testRules)
	want := []string{"LNG"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Classify() = %v, want %v", got, want)
	}
}

func TestClassify_NoMatch(t *testing.T) {
	if got := Classify("sailing", "", testRules); got != nil {
		t.Errorf("Classify() = %v, want nil", got)
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	got := Classify("new lng CARRIER", "at the PORT of rotterdam", testRules)
	want := []string{"LNG", "Ports"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Classify() = %v, want %v", got, want)
	}
}

func TestClassify_MultipleIndependentTopics(t *testing.T) {
	// 一篇文章可以同时命中多个主题，各主题互不影响
	got := Classify("Container shipping rates rise", "LNG terminal expansion at the port", testRules)
	want := []string{"LNG", "Ports", "Shipping"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Classify() = %v, want %v", got, want)
	}
}

func TestClassify_SubstringInsideLongerWord(t *testing.T) {
	// 既定策略：子串匹配而不是整词匹配，短关键词可以命中长单词内部
	got := Classify("Important announcement", "", testRules)
	want := []string{"Ports"} // "port"命中"Important"内部

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Classify() = %v, want %v", got, want)
	}
}

func TestClassify_SummaryAlsoSearched(t *testing.T) {
	got := Classify("Weekly roundup", "congestion at the container terminal", testRules)
	want := []string{"Ports", "Shipping"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Classify() = %v, want %v", got, want)
	}
}

func TestClassify_EmptyAndBlankKeywordsIgnored(t *testing.T) {
	rules := []model.TopicRule{
		{Name: "Empty", Include: nil},
		{Name: "Blank", Include: []string{"", "   "}},
	}

	if got := Classify("anything at all", "", rules); got != nil {
		t.Errorf("Classify() = %v, want nil", got)
	}
}
